package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medbridge/medbridge/internal/assistant"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/store"
	"github.com/medbridge/medbridge/internal/types"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.pipeline.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Search failed", "query", req.Query, "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatientChat(w http.ResponseWriter, r *http.Request) {
	s.handleChat(w, r, s.assistant.PatientChat)
}

func (s *Server) handleResearcherChat(w http.ResponseWriter, r *http.Request) {
	s.handleChat(w, r, s.assistant.ResearcherChat)
}

func (s *Server) handleChat(
	w http.ResponseWriter,
	r *http.Request,
	chat func(context.Context, assistant.ChatRequest) (*assistant.ChatResponse, error),
) {
	var req assistant.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := chat(r.Context(), req)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Assistant chat failed", "user_id", req.UserID, "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFavoritesSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := s.summarizer.Summarize(r.Context(), req.UserID)
	if err != nil {
		s.logger.Error("Favorites summary failed", "user_id", req.UserID, "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListTrials(w http.ResponseWriter, r *http.Request) {
	trials, err := s.store.ListTrials(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, trials)
}

func (s *Server) handleCreateTrial(w http.ResponseWriter, r *http.Request) {
	var t types.Trial
	if !s.decode(w, r, &t) {
		return
	}
	if t.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.InsertTrial(r.Context(), &t); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTrial(w http.ResponseWriter, r *http.Request) {
	trial, err := s.store.GetTrial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trial == nil {
		s.respondError(w, http.StatusNotFound, "trial not found")
		return
	}
	s.respondJSON(w, http.StatusOK, trial)
}

func (s *Server) handleListResearchers(w http.ResponseWriter, r *http.Request) {
	researchers, err := s.store.ListResearchers(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, researchers)
}

func (s *Server) handleCreateResearcher(w http.ResponseWriter, r *http.Request) {
	var rp types.ResearcherProfile
	if !s.decode(w, r, &rp) {
		return
	}
	if rp.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := s.store.InsertResearcher(r.Context(), &rp); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, rp)
}

func (s *Server) handleGetResearcher(w http.ResponseWriter, r *http.Request) {
	researcher, err := s.store.GetResearcher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if researcher == nil {
		s.respondError(w, http.StatusNotFound, "researcher not found")
		return
	}
	s.respondJSON(w, http.StatusOK, researcher)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.store.ListQuestions(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, questions)
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q types.ForumQuestion
	if !s.decode(w, r, &q) {
		return
	}
	if q.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.InsertQuestion(r.Context(), &q); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, q)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := s.store.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if question == nil {
		s.respondError(w, http.StatusNotFound, "question not found")
		return
	}
	s.respondJSON(w, http.StatusOK, question)
}

func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := s.store.ListAnswers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answers)
}

func (s *Server) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	var a types.ForumAnswer
	if !s.decode(w, r, &a) {
		return
	}
	a.QuestionID = chi.URLParam(r, "id")
	if a.Content == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	question, err := s.store.GetQuestion(r.Context(), a.QuestionID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if question == nil {
		s.respondError(w, http.StatusNotFound, "question not found")
		return
	}
	if err := s.store.InsertAnswer(r.Context(), &a); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	publications, err := s.store.ListPublications(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, publications)
}

func (s *Server) handleCreatePublication(w http.ResponseWriter, r *http.Request) {
	var p types.Publication
	if !s.decode(w, r, &p) {
		return
	}
	if p.Title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.store.InsertPublication(r.Context(), &p); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPublication(w http.ResponseWriter, r *http.Request) {
	publication, err := s.store.GetPublication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if publication == nil {
		s.respondError(w, http.StatusNotFound, "publication not found")
		return
	}
	s.respondJSON(w, http.StatusOK, publication)
}

func (s *Server) handleUpsertPatient(w http.ResponseWriter, r *http.Request) {
	var p types.PatientProfile
	if !s.decode(w, r, &p) {
		return
	}
	if p.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := s.store.UpsertPatientProfile(r.Context(), &p); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetPatientProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		s.respondError(w, http.StatusNotFound, "patient profile not found")
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.store.ListFavorites(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var f types.Favorite
	if !s.decode(w, r, &f) {
		return
	}
	f.UserID = chi.URLParam(r, "userID")
	switch f.ItemType {
	case types.FavoriteTypeTrial, types.FavoriteTypeResearcher, types.FavoriteTypePublication:
	default:
		s.respondError(w, http.StatusBadRequest, "item_type must be trial, researcher or publication")
		return
	}
	if f.ItemID == "" {
		s.respondError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if err := s.store.AddFavorite(r.Context(), &f); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	itemType := types.FavoriteType(chi.URLParam(r, "itemType"))
	itemID := chi.URLParam(r, "itemID")
	if err := s.store.RemoveFavorite(r.Context(), userID, itemType, itemID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindOrCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatientID    string `json:"patient_id"`
		ResearcherID string `json:"researcher_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.PatientID == "" || req.ResearcherID == "" {
		s.respondError(w, http.StatusBadRequest, "patient_id and researcher_id are required")
		return
	}

	conversation, err := s.store.FindOrCreateConversation(r.Context(), req.PatientID, req.ResearcherID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, conversation)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var m types.Message
	if !s.decode(w, r, &m) {
		return
	}
	m.ConversationID = chi.URLParam(r, "id")
	if m.SenderID == "" || m.Content == "" {
		s.respondError(w, http.StatusBadRequest, "sender_id and content are required")
		return
	}
	if err := s.store.InsertMessage(r.Context(), &m); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReaderID string `json:"reader_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.ReaderID == "" {
		s.respondError(w, http.StatusBadRequest, "reader_id is required")
		return
	}
	if err := s.store.MarkMessagesRead(r.Context(), chi.URLParam(r, "id"), req.ReaderID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCollaborations(w http.ResponseWriter, r *http.Request) {
	if from := r.URL.Query().Get("from"); from != "" {
		requests, err := s.store.ListCollaborationRequestsFrom(r.Context(), from)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, requests)
		return
	}
	if to := r.URL.Query().Get("to"); to != "" {
		requests, err := s.store.ListCollaborationRequestsTo(r.Context(), to)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, requests)
		return
	}
	s.respondError(w, http.StatusBadRequest, "from or to query parameter is required")
}

func (s *Server) handleCreateCollaboration(w http.ResponseWriter, r *http.Request) {
	var req types.CollaborationRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		s.respondError(w, http.StatusBadRequest, "from_user_id and to_user_id are required")
		return
	}
	if err := s.store.InsertCollaborationRequest(r.Context(), &req); err != nil {
		if errors.Is(err, store.ErrDuplicateRequest) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleUpdateCollaboration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status types.CollaborationStatus `json:"status"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	switch req.Status {
	case types.CollaborationAccepted, types.CollaborationDeclined, types.CollaborationPending:
	default:
		s.respondError(w, http.StatusBadRequest, "status must be pending, accepted or declined")
		return
	}
	if err := s.store.UpdateCollaborationStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
