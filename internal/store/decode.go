package store

import (
	"time"

	"github.com/contentops/taskflow/internal/domain/task"
)

// DecodeTask maps a loosely-typed document onto the Task type. Malformed
// or absent values default to the zero value rather than failing: the
// store is duck-typed and documents written by older clients may carry
// partial or oddly-typed fields.
func DecodeTask(id string, doc Document) task.Task {
	t := task.Task{
		ID:                   id,
		Title:                asString(doc[task.FieldTitle]),
		Description:          asString(doc[task.FieldDescription]),
		Department:           asString(doc[task.FieldDepartment]),
		OriginalDepartment:   asString(doc[task.FieldOriginalDepartment]),
		AssignedTo:           asString(doc[task.FieldAssignedTo]),
		ShadowAssignedTo:     asString(doc[task.FieldShadowAssignedTo]),
		ClientID:             asString(doc[task.FieldClientID]),
		ClientName:           asString(doc[task.FieldClientName]),
		Status:               task.Status(asString(doc[task.FieldStatus])),
		RevisionMessage:      asString(doc[task.FieldRevisionMessage]),
		RevisionCount:        asInt(doc[task.FieldRevisionCount]),
		RevisionRequestedBy:  asString(doc[task.FieldRevisionRequestedBy]),
		RevisionAcknowledged: asBool(doc[task.FieldRevisionAcknowledged]),
		AcknowledgedBy:       asString(doc[task.FieldAcknowledgedBy]),
		AcknowledgedAt:       asTimePtr(doc[task.FieldAcknowledgedAt]),
		LastRevisionAt:       asTimePtr(doc[task.FieldLastRevisionAt]),
		Deadline:             asString(doc[task.FieldDeadline]),
		PostDate:             asString(doc[task.FieldPostDate]),
		CreatedAt:            asTime(doc[task.FieldCreatedAt]),
		StartedAt:            asTimePtr(doc[task.FieldStartedAt]),
		SubmittedAt:          asTimePtr(doc[task.FieldSubmittedAt]),
		SubmittedBy:          asString(doc[task.FieldSubmittedBy]),
		ApprovedAt:           asTimePtr(doc[task.FieldApprovedAt]),
		ApprovedBy:           asString(doc[task.FieldApprovedBy]),
		PostedAt:             asTimePtr(doc[task.FieldPostedAt]),
		PostedBy:             asString(doc[task.FieldPostedBy]),
		CompletedAt:          asTimePtr(doc[task.FieldCompletedAt]),
		LastUpdated:          asTime(doc[task.FieldLastUpdated]),
		AdsRun:               asBool(doc[task.FieldAdsRun]),
		AdType:               task.AdType(asString(doc[task.FieldAdType])),
		AdCost:               asFloat(doc[task.FieldAdCost]),
	}
	if !t.Status.IsValid() {
		t.Status = task.StatusPending
	}
	return t
}

// DecodeTasks maps a full snapshot to typed tasks.
func DecodeTasks(snap Snapshot) map[string]task.Task {
	out := make(map[string]task.Task, len(snap))
	for id, doc := range snap {
		out[id] = DecodeTask(id, doc)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asTime(v any) time.Time {
	if p := asTimePtr(v); p != nil {
		return *p
	}
	return time.Time{}
}

func asTimePtr(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}
