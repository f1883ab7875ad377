package types

import "time"

// UserType identifies which side of the platform a user is on
type UserType string

const (
	UserTypePatient    UserType = "patient"
	UserTypeResearcher UserType = "researcher"
)

// Trial represents a clinical trial listing
type Trial struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Condition           string    `json:"condition,omitempty"`
	Phase               string    `json:"phase"`
	Status              string    `json:"status"`
	Location            string    `json:"location,omitempty"`
	EligibilityCriteria string    `json:"eligibility_criteria,omitempty"`
	ContactEmail        string    `json:"contact_email,omitempty"`
	ResearcherID        string    `json:"researcher_id,omitempty"`
	CreatedAt           time.Time `json:"created_at,omitzero"`
}

// ResearcherProfile represents a researcher's public profile
type ResearcherProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Specialty   string    `json:"specialty"`
	Institution string    `json:"institution"`
	Location    string    `json:"location,omitempty"`
	Interests   string    `json:"interests,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// PatientProfile represents a patient's onboarding profile
type PatientProfile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ForumQuestion represents a question posted to the community forum
type ForumQuestion struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ForumAnswer represents a reply to a forum question
type ForumAnswer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	AuthorID   string    `json:"author_id,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// Publication represents a research publication
type Publication struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Journal      string    `json:"journal"`
	Year         int       `json:"year"`
	Authors      string    `json:"authors"`
	ResearcherID string    `json:"researcher_id,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// FavoriteType identifies which kind of record a favorite points at
type FavoriteType string

const (
	FavoriteTypeTrial       FavoriteType = "trial"
	FavoriteTypeResearcher  FavoriteType = "researcher"
	FavoriteTypePublication FavoriteType = "publication"
)

// Favorite is a bookmark from a user to a trial, researcher or publication
type Favorite struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	ItemType  FavoriteType `json:"item_type"`
	ItemID    string       `json:"item_id"`
	CreatedAt time.Time    `json:"created_at,omitzero"`
}

// Conversation pairs a patient and a researcher for direct messaging
type Conversation struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	ResearcherID string    `json:"researcher_id"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// Message is a single direct message within a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

// CollaborationStatus is the lifecycle state of a collaboration request
type CollaborationStatus string

const (
	CollaborationPending  CollaborationStatus = "pending"
	CollaborationAccepted CollaborationStatus = "accepted"
	CollaborationDeclined CollaborationStatus = "declined"
)

// CollaborationRequest is sent between researchers to propose working together
type CollaborationRequest struct {
	ID         string              `json:"id"`
	FromUserID string              `json:"from_user_id"`
	ToUserID   string              `json:"to_user_id"`
	Message    string              `json:"message,omitempty"`
	Status     CollaborationStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at,omitzero"`
}

// CandidateID implementations let the search pipeline join scored items
// back to their full records without knowing the concrete type.

func (t Trial) CandidateID() string             { return t.ID }
func (r ResearcherProfile) CandidateID() string { return r.ID }
func (q ForumQuestion) CandidateID() string     { return q.ID }
func (p Publication) CandidateID() string       { return p.ID }
