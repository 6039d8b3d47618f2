package repository

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Due-date buckets recognized by the task filter. Any other value applies no
// date constraint.
const (
	DueToday    = "today"
	DueTomorrow = "tomorrow"
	DueUpcoming = "upcoming"
	DueOverdue  = "overdue"
)

// FilterTasksParams defines the optional criteria for filtering tasks. All
// supplied criteria combine with logical AND; the search criterion matches
// title or description internally.
type FilterTasksParams struct {
	Completed *bool
	Priority  *string
	Tags      []string
	Search    *string
	DueDate   string
}

// DayBoundary returns the start of the calendar day containing now and the
// start of the following day, in now's location. All bucket math derives
// from these two instants.
func DayBoundary(now time.Time) (startOfToday, startOfTomorrow time.Time) {
	year, month, day := now.Date()
	startOfToday = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return startOfToday, startOfToday.AddDate(0, 0, 1)
}

// taskPredicate translates the filter criteria into a single query document,
// always scoped to the owner's tasks.
//
// The upcoming and overdue buckets are defined only over incomplete tasks, so
// they override any completion criterion the caller supplied.
func taskPredicate(owner bson.ObjectID, params FilterTasksParams, now time.Time) bson.M {
	filter := bson.M{"user_id": owner}

	if params.Completed != nil {
		filter["completed"] = *params.Completed
	}

	if params.Priority != nil {
		filter["priority"] = *params.Priority
	}

	if len(params.Tags) > 0 {
		filter["tags"] = bson.M{"$in": params.Tags}
	}

	if params.Search != nil && *params.Search != "" {
		pattern := regexp.QuoteMeta(*params.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	startOfToday, startOfTomorrow := DayBoundary(now)

	switch params.DueDate {
	case DueToday:
		filter["due_date"] = bson.M{"$gte": startOfToday, "$lt": startOfTomorrow}
	case DueTomorrow:
		filter["due_date"] = bson.M{"$gte": startOfTomorrow, "$lt": startOfTomorrow.Add(24 * time.Hour)}
	case DueUpcoming:
		filter["due_date"] = bson.M{"$gte": startOfToday}
		filter["completed"] = false
	case DueOverdue:
		filter["due_date"] = bson.M{"$lt": startOfToday}
		filter["completed"] = false
	}

	return filter
}
