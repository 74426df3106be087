package task

import "time"

// AdType classifies paid promotion attached to a posted task.
type AdType string

const (
	AdTypeBoost     AdType = "boost"
	AdTypeCarousel  AdType = "carousel"
	AdTypeStory     AdType = "story"
	AdTypeVideo     AdType = "video"
	AdTypeSponsored AdType = "sponsored"
)

var validAdTypes = map[AdType]bool{
	AdTypeBoost:     true,
	AdTypeCarousel:  true,
	AdTypeStory:     true,
	AdTypeVideo:     true,
	AdTypeSponsored: true,
}

// IsValid returns true if the ad type is a known value.
func (a AdType) IsValid() bool {
	return validAdTypes[a]
}

// Fields is a named-field patch sent to the store. A controller always
// writes one self-consistent set of fields so readers never observe a
// half-applied transition.
type Fields map[string]any

// Field names as they appear in store documents.
const (
	FieldTitle                = "title"
	FieldDescription          = "description"
	FieldDepartment           = "department"
	FieldOriginalDepartment   = "originalDepartment"
	FieldAssignedTo           = "assignedTo"
	FieldShadowAssignedTo     = "shadowAssignedTo"
	FieldClientID             = "clientId"
	FieldClientName           = "clientName"
	FieldStatus               = "status"
	FieldRevisionMessage      = "revisionMessage"
	FieldRevisionCount        = "revisionCount"
	FieldRevisionRequestedBy  = "revisionRequestedBy"
	FieldRevisionAcknowledged = "revisionAcknowledged"
	FieldAcknowledgedBy       = "acknowledgedBy"
	FieldAcknowledgedAt       = "acknowledgedAt"
	FieldLastRevisionAt       = "lastRevisionAt"
	FieldDeadline             = "deadline"
	FieldPostDate             = "postDate"
	FieldCreatedAt            = "createdAt"
	FieldStartedAt            = "startedAt"
	FieldSubmittedAt          = "submittedAt"
	FieldSubmittedBy          = "submittedBy"
	FieldApprovedAt           = "approvedAt"
	FieldApprovedBy           = "approvedBy"
	FieldPostedAt             = "postedAt"
	FieldPostedBy             = "postedBy"
	FieldCompletedAt          = "completedAt"
	FieldLastUpdated          = "lastUpdated"
	FieldAdsRun               = "adsRun"
	FieldAdType               = "adType"
	FieldAdCost               = "adCost"
)

// DateLayout is the calendar-date format used for deadlines and post
// dates. Month filtering relies on its textual YYYY-MM prefix.
const DateLayout = "2006-01-02"

// Task is a unit of work bound to one client and currently one
// department/employee. Decoded from loosely-typed store documents at the
// boundary; absent fields stay at their zero value.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Ownership. Department is the current working department,
	// OriginalDepartment the one that most recently handed the task off
	// (revisions route back to it). ShadowAssignedTo keeps a non-owning
	// employee's dashboard visibility after a hand-off.
	Department         string `json:"department"`
	OriginalDepartment string `json:"originalDepartment,omitempty"`
	AssignedTo         string `json:"assignedTo,omitempty"`
	ShadowAssignedTo   string `json:"shadowAssignedTo,omitempty"`

	ClientID   string `json:"clientId,omitempty"`
	ClientName string `json:"clientName,omitempty"`

	Status Status `json:"status"`

	// Revision state.
	RevisionMessage      string     `json:"revisionMessage,omitempty"`
	RevisionCount        int        `json:"revisionCount"`
	RevisionRequestedBy  string     `json:"revisionRequestedBy,omitempty"`
	RevisionAcknowledged bool       `json:"revisionAcknowledged"`
	AcknowledgedBy       string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt       *time.Time `json:"acknowledgedAt,omitempty"`
	LastRevisionAt       *time.Time `json:"lastRevisionAt,omitempty"`

	// Scheduling dates, YYYY-MM-DD.
	Deadline string `json:"deadline,omitempty"`
	PostDate string `json:"postDate,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	SubmittedBy string     `json:"submittedBy,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy  string     `json:"approvedBy,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
	PostedBy    string     `json:"postedBy,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastUpdated time.Time  `json:"lastUpdated"`

	// Monetization, set only by the posting action.
	AdsRun bool    `json:"adsRun"`
	AdType AdType  `json:"adType,omitempty"`
	AdCost float64 `json:"adCost"`
}

// ReferenceDate returns the calendar date used by time-window filtering:
// the deadline when set, otherwise the post date. Empty means the task
// has no reference date and never matches a window.
func (t Task) ReferenceDate() string {
	if t.Deadline != "" {
		return t.Deadline
	}
	return t.PostDate
}

// HasClient returns true if the task names a client by id or name, which
// subjects it to active-client gating.
func (t Task) HasClient() bool {
	return t.ClientID != "" || t.ClientName != ""
}
