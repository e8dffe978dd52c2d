package database

import (
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	usersTable    = "users"
	sessionsTable = "sessions"
	profilesTable = "profiles"
	objectsTable  = "objects"
)

// recordKey returns the ID part of a record ID ("users:abc" -> "abc").
func recordKey(id *models.RecordID) string {
	if id == nil || id.ID == nil {
		return ""
	}
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprint(id.ID)
}

func toDateTime(t time.Time) *models.CustomDateTime {
	if t.IsZero() {
		return nil
	}
	return &models.CustomDateTime{Time: t.UTC()}
}

func fromDateTime(dt *models.CustomDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	return dt.Time
}

func fromDateTimePtr(dt *models.CustomDateTime) *time.Time {
	if dt == nil {
		return nil
	}
	t := dt.Time
	return &t
}
