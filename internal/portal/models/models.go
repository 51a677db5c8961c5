// Package models defines the portal's record types and the schema-free
// Document shape the sync engine moves between the local store and the
// remote collection service.
package models

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

type RequestType string

const (
	RequestEventJoin    RequestType = "EVENT_JOIN"
	RequestFileDownload RequestType = "FILE_DOWNLOAD"
)

type GalleryItemType string

const (
	GalleryPhoto    GalleryItemType = "PHOTO"
	GalleryDocument GalleryItemType = "DOCUMENT"
)

type NotificationType string

const (
	NotifyInfo    NotificationType = "INFO"
	NotifySuccess NotificationType = "SUCCESS"
	NotifyWarning NotificationType = "WARNING"
)

type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar"`
	Bio    string   `json:"bio,omitempty"`
}

type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
}

// HasAttendee reports membership by presence; the attendee list never holds
// duplicate user ids.
func (e *Event) HasAttendee(userID string) bool {
	for _, id := range e.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

type Announcement struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	AuthorID string `json:"authorId"`
}

type GalleryItem struct {
	ID       string          `json:"id"`
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Type     GalleryItemType `json:"type"`
	IsPublic bool            `json:"isPublic"`
}

type UserRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	UserName  string        `json:"userName"`
	Type      RequestType   `json:"type"`
	TargetID  string        `json:"targetId"`
	Status    RequestStatus `json:"status"`
	Timestamp string        `json:"timestamp"`
}

// Terminal reports whether the request reached one of its final states.
func (r *UserRequest) Terminal() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}

type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	Read       bool             `json:"read"`
	Timestamp  string           `json:"timestamp"`
	TargetPage string           `json:"targetPage,omitempty"`
	TargetID   string           `json:"targetId,omitempty"`
}
