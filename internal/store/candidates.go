package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/medbridge/medbridge/internal/types"
)

// ListTrials returns every clinical trial in the store
func (s *Store) ListTrials(ctx context.Context) ([]types.Trial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, condition, phase, status, location,
			eligibility_criteria, contact_email, researcher_id, created_at
		FROM clinical_trials
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinical trials: %w", err)
	}
	defer rows.Close()

	return scanTrials(rows)
}

// ListTrialsByCondition returns recruiting trials whose condition matches the
// given text, most recent first
func (s *Store) ListTrialsByCondition(ctx context.Context, condition string, limit int) ([]types.Trial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, condition, phase, status, location,
			eligibility_criteria, contact_email, researcher_id, created_at
		FROM clinical_trials
		WHERE condition LIKE '%' || ? || '%' AND status = 'Recruiting'
		ORDER BY created_at DESC
		LIMIT ?
	`, condition, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials by condition: %w", err)
	}
	defer rows.Close()

	return scanTrials(rows)
}

// ListRecentTrials returns the most recently added trials
func (s *Store) ListRecentTrials(ctx context.Context, limit int) ([]types.Trial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, condition, phase, status, location,
			eligibility_criteria, contact_email, researcher_id, created_at
		FROM clinical_trials
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent trials: %w", err)
	}
	defer rows.Close()

	return scanTrials(rows)
}

func scanTrials(rows *sql.Rows) ([]types.Trial, error) {
	trials := []types.Trial{}
	for rows.Next() {
		var t types.Trial
		var condition, location, eligibility, contact, researcherID sql.NullString
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &condition, &t.Phase, &t.Status,
			&location, &eligibility, &contact, &researcherID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trial: %w", err)
		}
		t.Condition = condition.String
		t.Location = location.String
		t.EligibilityCriteria = eligibility.String
		t.ContactEmail = contact.String
		t.ResearcherID = researcherID.String
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// InsertTrial stores a trial, assigning an id if one is not set
func (s *Store) InsertTrial(ctx context.Context, t *types.Trial) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinical_trials (
			id, title, description, condition, phase, status, location,
			eligibility_criteria, contact_email, researcher_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Condition, t.Phase, t.Status, t.Location,
		t.EligibilityCriteria, t.ContactEmail, t.ResearcherID)
	if err != nil {
		return fmt.Errorf("failed to store trial: %w", err)
	}
	s.logger.Debug("Stored trial", "id", t.ID, "title", t.Title)
	return nil
}

// GetTrial returns the trial with the given id, or nil if absent
func (s *Store) GetTrial(ctx context.Context, id string) (*types.Trial, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, condition, phase, status, location,
			eligibility_criteria, contact_email, researcher_id, created_at
		FROM clinical_trials WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trial: %w", err)
	}
	defer rows.Close()

	trials, err := scanTrials(rows)
	if err != nil || len(trials) == 0 {
		return nil, err
	}
	return &trials[0], nil
}

// ListResearchers returns every researcher profile in the store
func (s *Store) ListResearchers(ctx context.Context) ([]types.ResearcherProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, specialty, institution, location, interests, created_at
		FROM researcher_profiles
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query researcher profiles: %w", err)
	}
	defer rows.Close()

	return scanResearchers(rows)
}

// ListResearchersBySpecialty returns researchers whose specialty matches the given text
func (s *Store) ListResearchersBySpecialty(ctx context.Context, specialty string, limit int) ([]types.ResearcherProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, specialty, institution, location, interests, created_at
		FROM researcher_profiles
		WHERE specialty LIKE '%' || ? || '%'
		LIMIT ?
	`, specialty, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query researchers by specialty: %w", err)
	}
	defer rows.Close()

	return scanResearchers(rows)
}

// ListResearcherPeers returns researcher profiles other than the given user's
func (s *Store) ListResearcherPeers(ctx context.Context, userID string, limit int) ([]types.ResearcherProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, specialty, institution, location, interests, created_at
		FROM researcher_profiles
		WHERE user_id != ?
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query researcher peers: %w", err)
	}
	defer rows.Close()

	return scanResearchers(rows)
}

func scanResearchers(rows *sql.Rows) ([]types.ResearcherProfile, error) {
	researchers := []types.ResearcherProfile{}
	for rows.Next() {
		var r types.ResearcherProfile
		var location, interests sql.NullString
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Name, &r.Specialty, &r.Institution,
			&location, &interests, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan researcher profile: %w", err)
		}
		r.Location = location.String
		r.Interests = interests.String
		researchers = append(researchers, r)
	}
	return researchers, rows.Err()
}

// InsertResearcher stores a researcher profile, assigning an id if one is not set
func (s *Store) InsertResearcher(ctx context.Context, r *types.ResearcherProfile) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO researcher_profiles (id, user_id, name, specialty, institution, location, interests)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.Name, r.Specialty, r.Institution, r.Location, r.Interests)
	if err != nil {
		return fmt.Errorf("failed to store researcher profile: %w", err)
	}
	s.logger.Debug("Stored researcher profile", "id", r.ID, "name", r.Name)
	return nil
}

// GetResearcher returns the researcher profile with the given id, or nil if absent
func (s *Store) GetResearcher(ctx context.Context, id string) (*types.ResearcherProfile, error) {
	return s.getResearcherBy(ctx, "id", id)
}

// GetResearcherByUser returns the researcher profile owned by the given user, or nil if absent
func (s *Store) GetResearcherByUser(ctx context.Context, userID string) (*types.ResearcherProfile, error) {
	return s.getResearcherBy(ctx, "user_id", userID)
}

func (s *Store) getResearcherBy(ctx context.Context, column, value string) (*types.ResearcherProfile, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, name, specialty, institution, location, interests, created_at
		FROM researcher_profiles WHERE %s = ?
	`, column), value)
	if err != nil {
		return nil, fmt.Errorf("failed to get researcher profile: %w", err)
	}
	defer rows.Close()

	researchers, err := scanResearchers(rows)
	if err != nil || len(researchers) == 0 {
		return nil, err
	}
	return &researchers[0], nil
}

// ListQuestions returns every forum question in the store
func (s *Store) ListQuestions(ctx context.Context) ([]types.ForumQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, author_id, created_at
		FROM forum_questions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query forum questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListQuestionsByTitle returns questions whose title matches the given text,
// most recent first
func (s *Store) ListQuestionsByTitle(ctx context.Context, title string, limit int) ([]types.ForumQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, author_id, created_at
		FROM forum_questions
		WHERE title LIKE '%' || ? || '%'
		ORDER BY created_at DESC
		LIMIT ?
	`, title, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by title: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListRecentQuestions returns the most recently posted questions
func (s *Store) ListRecentQuestions(ctx context.Context, limit int) ([]types.ForumQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, author_id, created_at
		FROM forum_questions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]types.ForumQuestion, error) {
	questions := []types.ForumQuestion{}
	for rows.Next() {
		var q types.ForumQuestion
		var category, authorID sql.NullString
		if err := rows.Scan(&q.ID, &q.Title, &q.Content, &category, &authorID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan forum question: %w", err)
		}
		q.Category = category.String
		q.AuthorID = authorID.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// InsertQuestion stores a forum question, assigning an id if one is not set
func (s *Store) InsertQuestion(ctx context.Context, q *types.ForumQuestion) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forum_questions (id, title, content, category, author_id)
		VALUES (?, ?, ?, ?, ?)
	`, q.ID, q.Title, q.Content, q.Category, q.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to store forum question: %w", err)
	}
	s.logger.Debug("Stored forum question", "id", q.ID, "title", q.Title)
	return nil
}

// GetQuestion returns the forum question with the given id, or nil if absent
func (s *Store) GetQuestion(ctx context.Context, id string) (*types.ForumQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, author_id, created_at
		FROM forum_questions WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get forum question: %w", err)
	}
	defer rows.Close()

	questions, err := scanQuestions(rows)
	if err != nil || len(questions) == 0 {
		return nil, err
	}
	return &questions[0], nil
}

// ListPublications returns every publication in the store
func (s *Store) ListPublications(ctx context.Context) ([]types.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, journal, year, authors, researcher_id, created_at
		FROM publications
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// ListPublicationsByTitle returns publications whose title matches the given
// text, most recent first
func (s *Store) ListPublicationsByTitle(ctx context.Context, title string, limit int) ([]types.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, journal, year, authors, researcher_id, created_at
		FROM publications
		WHERE title LIKE '%' || ? || '%'
		ORDER BY created_at DESC
		LIMIT ?
	`, title, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications by title: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// ListRecentPublications returns the most recently added publications
func (s *Store) ListRecentPublications(ctx context.Context, limit int) ([]types.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, journal, year, authors, researcher_id, created_at
		FROM publications
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent publications: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

func scanPublications(rows *sql.Rows) ([]types.Publication, error) {
	publications := []types.Publication{}
	for rows.Next() {
		var p types.Publication
		var researcherID sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Journal, &p.Year, &p.Authors, &researcherID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		p.ResearcherID = researcherID.String
		publications = append(publications, p)
	}
	return publications, rows.Err()
}

// InsertPublication stores a publication, assigning an id if one is not set
func (s *Store) InsertPublication(ctx context.Context, p *types.Publication) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publications (id, title, journal, year, authors, researcher_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Journal, p.Year, p.Authors, p.ResearcherID)
	if err != nil {
		return fmt.Errorf("failed to store publication: %w", err)
	}
	s.logger.Debug("Stored publication", "id", p.ID, "title", p.Title)
	return nil
}

// GetPublication returns the publication with the given id, or nil if absent
func (s *Store) GetPublication(ctx context.Context, id string) (*types.Publication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, journal, year, authors, researcher_id, created_at
		FROM publications WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	defer rows.Close()

	publications, err := scanPublications(rows)
	if err != nil || len(publications) == 0 {
		return nil, err
	}
	return &publications[0], nil
}
