package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Order and session numbers are time-plus-randomness rather than a sequential
// counter: a read-count-then-insert scheme races under concurrent creation on
// the same day, and practical uniqueness is all the business needs.
//
// Format: <prefix>-YYYYMMDD-HHMMSS-<6 random hex chars>

// GenerateOrderNumber returns a new order number, e.g. ORD-20250131-142501-a3f19c
func GenerateOrderNumber() string {
	return generateNumber("ORD")
}

// GenerateSessionNumber returns a new session number, e.g. SESS-20250131-142501-9b04e2
func GenerateSessionNumber() string {
	return generateNumber("SESS")
}

func generateNumber(prefix string) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand failing means the system is in serious trouble; fall
		// back to the clock's nanoseconds rather than aborting order intake
		return fmt.Sprintf("%s-%s-%06d", prefix, time.Now().Format("20060102-150405"), time.Now().Nanosecond()%1000000)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102-150405"), hex.EncodeToString(suffix))
}
