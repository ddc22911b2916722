package utils

import (
	"log"
	"strings"
)

// LogEvent prints a standardized line with module/action/request_id.
// Keep message summarized; never log payloads or credentials.
func LogEvent(requestID, module, action, message string) {
	logLine("INFO", requestID, module, action, message)
}

// LogWarn is LogEvent for conditions an operator should look at, such as
// assignments pointing at missing bookings.
func LogWarn(requestID, module, action, message string) {
	logLine("WARN", requestID, module, action, message)
}

func LogError(requestID, module, action string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	logLine("ERROR", requestID, module, action, msg)
}

func logLine(level, requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] level=%s action=%s request_id=%s msg=%s", strings.ToUpper(module), level, action, req, message)
}
