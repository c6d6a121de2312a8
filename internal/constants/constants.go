package constants

// keys of the controller registry handed to the router
const (
	Auth = iota
	Posts
	Search
	Bitbucket
	SessionGuard
)
