package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medbridge/medbridge/internal/types"
)

// ErrDuplicateRequest is returned when a collaboration request already exists
// between the same pair of users
var ErrDuplicateRequest = errors.New("collaboration request already exists for this pair")

// UpsertPatientProfile stores or replaces a patient's onboarding profile
func (s *Store) UpsertPatientProfile(ctx context.Context, p *types.PatientProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO patient_profiles (user_id, name, condition, location)
		VALUES (?, ?, ?, ?)
	`, p.UserID, p.Name, p.Condition, p.Location)
	if err != nil {
		return fmt.Errorf("failed to store patient profile: %w", err)
	}
	s.logger.Debug("Stored patient profile", "user_id", p.UserID)
	return nil
}

// GetPatientProfile returns the profile for the given user, or nil if absent
func (s *Store) GetPatientProfile(ctx context.Context, userID string) (*types.PatientProfile, error) {
	var p types.PatientProfile
	var location sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, condition, location, created_at
		FROM patient_profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.Name, &p.Condition, &location, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient profile: %w", err)
	}
	p.Location = location.String
	return &p, nil
}

// AddFavorite bookmarks an item for a user. Adding the same item twice is a no-op.
func (s *Store) AddFavorite(ctx context.Context, f *types.Favorite) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (id, user_id, item_type, item_id)
		VALUES (?, ?, ?, ?)
	`, f.ID, f.UserID, f.ItemType, f.ItemID)
	if err != nil {
		return fmt.Errorf("failed to store favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a user's bookmark for an item
func (s *Store) RemoveFavorite(ctx context.Context, userID string, itemType types.FavoriteType, itemID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?
	`, userID, itemType, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListFavorites returns all of a user's bookmarks
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]types.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_type, item_id, created_at
		FROM favorites WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []types.Favorite{}
	for rows.Next() {
		var f types.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.ItemType, &f.ItemID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// FindOrCreateConversation returns the conversation between a patient and a
// researcher, creating it on first contact
func (s *Store) FindOrCreateConversation(ctx context.Context, patientID, researcherID string) (*types.Conversation, error) {
	var c types.Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, researcher_id, created_at
		FROM conversations WHERE patient_id = ? AND researcher_id = ?
	`, patientID, researcherID).Scan(&c.ID, &c.PatientID, &c.ResearcherID, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	c = types.Conversation{
		ID:           uuid.NewString(),
		PatientID:    patientID,
		ResearcherID: researcherID,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, patient_id, researcher_id) VALUES (?, ?, ?)
	`, c.ID, c.PatientID, c.ResearcherID)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	s.logger.Debug("Created conversation", "id", c.ID, "patient_id", patientID, "researcher_id", researcherID)
	return &c, nil
}

// InsertMessage stores a direct message, assigning an id if one is not set
func (s *Store) InsertMessage(ctx context.Context, m *types.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.ConversationID, m.SenderID, m.Content, m.IsRead)
	if err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// ListMessages returns all messages in a conversation, oldest first
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]types.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []types.Message{}
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkMessagesRead marks every message in a conversation not sent by readerID as read
func (s *Store) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE conversation_id = ? AND sender_id != ? AND is_read = 0
	`, conversationID, readerID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// InsertCollaborationRequest stores a collaboration request. A second request
// between the same pair of users returns ErrDuplicateRequest.
func (s *Store) InsertCollaborationRequest(ctx context.Context, r *types.CollaborationRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = types.CollaborationPending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collaboration_requests (id, from_user_id, to_user_id, message, status)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.FromUserID, r.ToUserID, r.Message, r.Status)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("failed to store collaboration request: %w", err)
	}
	s.logger.Debug("Stored collaboration request", "id", r.ID, "from", r.FromUserID, "to", r.ToUserID)
	return nil
}

// ListCollaborationRequestsFrom returns requests sent by a user, most recent first
func (s *Store) ListCollaborationRequestsFrom(ctx context.Context, userID string) ([]types.CollaborationRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_user_id, to_user_id, message, status, created_at
		FROM collaboration_requests WHERE from_user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collaboration requests: %w", err)
	}
	defer rows.Close()

	return scanCollaborationRequests(rows)
}

// ListCollaborationRequestsTo returns requests received by a user, most recent first
func (s *Store) ListCollaborationRequestsTo(ctx context.Context, userID string) ([]types.CollaborationRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_user_id, to_user_id, message, status, created_at
		FROM collaboration_requests WHERE to_user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collaboration requests: %w", err)
	}
	defer rows.Close()

	return scanCollaborationRequests(rows)
}

func scanCollaborationRequests(rows *sql.Rows) ([]types.CollaborationRequest, error) {
	requests := []types.CollaborationRequest{}
	for rows.Next() {
		var r types.CollaborationRequest
		var message sql.NullString
		if err := rows.Scan(&r.ID, &r.FromUserID, &r.ToUserID, &message, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collaboration request: %w", err)
		}
		r.Message = message.String
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// UpdateCollaborationStatus sets the status of a collaboration request
func (s *Store) UpdateCollaborationStatus(ctx context.Context, id string, status types.CollaborationStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE collaboration_requests SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update collaboration request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("collaboration request %s not found", id)
	}
	return nil
}

// InsertAnswer stores a forum answer, assigning an id if one is not set
func (s *Store) InsertAnswer(ctx context.Context, a *types.ForumAnswer) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_answers (id, question_id, author_id, content)
		VALUES (?, ?, ?, ?)
	`, a.ID, a.QuestionID, a.AuthorID, a.Content)
	if err != nil {
		return fmt.Errorf("failed to store forum answer: %w", err)
	}
	return nil
}

// ListAnswers returns all answers to a question, oldest first
func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]types.ForumAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, author_id, content, created_at
		FROM forum_answers WHERE question_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query forum answers: %w", err)
	}
	defer rows.Close()

	answers := []types.ForumAnswer{}
	for rows.Next() {
		var a types.ForumAnswer
		var authorID sql.NullString
		if err := rows.Scan(&a.ID, &a.QuestionID, &authorID, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forum answer: %w", err)
		}
		a.AuthorID = authorID.String
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
