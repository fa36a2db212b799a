package domain

import "time"

// EventType identifies what happened. The type drives client-side rendering;
// routing is carried separately by the envelope's audience.
type EventType string

const (
	EventNewFlatMemberRequest EventType = "NEW_FLAT_MEMBER_REQUEST"
	EventFlatMemberApproved   EventType = "FLAT_MEMBER_APPROVED"
	EventNewAllocationRequest EventType = "NEW_ALLOCATION_REQUEST"
	EventNewComplaint         EventType = "NEW_COMPLAINT"
	EventComplaintUpdated     EventType = "COMPLAINT_STATUS_UPDATED"
	EventVisitorApprovalReq   EventType = "VISITOR_APPROVAL_REQUIRED"
	EventVisitorApproved      EventType = "VISITOR_APPROVED"
	EventNewMaintenanceBill   EventType = "NEW_MAINTENANCE_BILL"
	EventMaintenanceBillPaid  EventType = "MAINTENANCE_BILL_PAID"
	EventBulkBillsGenerated   EventType = "BULK_MAINTENANCE_BILLS_GENERATED"
	EventNewNotice            EventType = "NEW_NOTICE"
	EventNoticeUpdated        EventType = "NOTICE_UPDATED"
)

// Audience selects the logical delivery channel for an envelope.
type Audience string

const (
	AudiencePrivate   Audience = "private"  // one user's inbox, keyed by RecipientID
	AudienceSociety   Audience = "society"  // every subscriber of the society topic
	AudienceAdmins    Audience = "admin"    // admin-role topic scoped to one society
	AudienceResidents Audience = "resident" // resident-role topic scoped to one society
	AudienceGuards    Audience = "guard"    // guard-role topic scoped to one society
	AudienceGlobal    Audience = "global"   // every subscriber, any society
)

// TopicGlobal is the platform-wide broadcast topic.
const TopicGlobal = "global"

// Envelope is the common notification payload emitted by the lifecycle
// services and resolved into transport addresses by the router. Envelopes
// are transient: constructed per event, never persisted by the core.
type Envelope struct {
	Type       EventType `json:"type"`
	Message    string    `json:"message"`
	Payload    any       `json:"payload,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	Audience   Audience  `json:"audience,omitempty"`
	// Exactly one of RecipientID (private) or SocietyID (topic) determines
	// the route; both empty means the envelope is silently dropped.
	RecipientID string `json:"recipient_id,omitempty"`
	SocietyID   string `json:"society_id,omitempty"`
}

// NewEnvelope builds an envelope with the timestamp stamped.
func NewEnvelope(t EventType, message string, payload any, sender Actor, audience Audience, recipientID, societyID string) Envelope {
	return Envelope{
		Type:        t,
		Message:     message,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
		SenderID:    sender.UserID,
		SenderName:  sender.Name,
		Audience:    audience,
		RecipientID: recipientID,
		SocietyID:   societyID,
	}
}
