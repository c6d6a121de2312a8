package logging

import (
	"fmt"
	"log/slog"
)

const (
	SubTypePosts          = "posts"
	SubTypeAuth           = "auth"
	SubTypeSearch         = "search"
	SubTypeImport         = "import"
	SubTypeInitialization = "initialization"
)

// GetLogType creates a slice which can be used as keyVal argument of a Logger
// it takes up to 3 arguments: subType, contextId1 and correlationId
// empty values are skipped, so GetLogType("posts", "", id) only carries subType and correlationId
func GetLogType(logType ...string) []any {
	keys := []string{"subType", "contextId1", "correlationId"}

	temp := make([]any, 0, 2*len(logType))
	for i, v := range logType {
		if i >= len(keys) {
			slog.Warn(fmt.Sprintf("getLogType: parameter %d unknown: %v", i+1, v))
			break
		}
		if len(v) == 0 {
			continue
		}
		temp = append(temp, keys[i], v)
	}
	return temp
}

func GetLogTypeInitialization() []any {
	return GetLogType(SubTypeInitialization)
}

// GetLogTypeRequest tags a log line with the request's correlation id and an optional context (e.g. a slug).
func GetLogTypeRequest(subType, contextId, requestId string) []any {
	return GetLogType(subType, contextId, requestId)
}
