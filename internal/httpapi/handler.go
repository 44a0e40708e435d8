package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/interview"
	"excel-interviewer/internal/metrics"
	"excel-interviewer/internal/prompts"
	"excel-interviewer/internal/storage"
	"excel-interviewer/internal/summary"
)

// MetricsSource отдает текущие счетчики
type MetricsSource interface {
	GetSnapshot() metrics.Snapshot
}

// ReportStore читает сохраненные отчеты
type ReportStore interface {
	LoadReport(interviewID string) (*storage.InterviewReport, error)
	ListReports() ([]string, error)
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type QuestionView struct {
	Number     int    `json:"number"`
	Total      int    `json:"total"`
	Difficulty string `json:"difficulty"`
	Text       string `json:"text"`
}

type InterviewResponse struct {
	ID       string          `json:"id"`
	State    interview.State `json:"state"`
	Question *QuestionView   `json:"question,omitempty"`
	Attempts int             `json:"attempts"`
	Tally    summary.Tally   `json:"tally"`
	Messages []string        `json:"messages,omitempty"`
}

type AnswerResponse struct {
	InterviewResponse
	Correct   bool `json:"correct"`
	HintShown bool `json:"hint_shown"`
	Resolved  bool `json:"resolved"`
	Completed bool `json:"completed"`
}

type InterviewHandler struct {
	service  *interview.Service
	sessions *interview.Registry
	metrics  MetricsSource
	reports  ReportStore
}

// NewInterviewHandler создает обработчик. metrics и reports могут быть nil.
func NewInterviewHandler(service *interview.Service, sessions *interview.Registry, stats MetricsSource, reports ReportStore) *InterviewHandler {
	return &InterviewHandler{
		service:  service,
		sessions: sessions,
		metrics:  stats,
		reports:  reports,
	}
}

func (h *InterviewHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/interviews", h.CreateInterview).Methods("POST")
	router.HandleFunc("/interviews/{id}", h.GetInterview).Methods("GET")
	router.HandleFunc("/interviews/{id}", h.DeleteInterview).Methods("DELETE")
	router.HandleFunc("/interviews/{id}/answers", h.SubmitAnswer).Methods("POST")
	router.HandleFunc("/interviews/{id}/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/metrics", h.GetMetrics).Methods("GET")
	if h.reports != nil {
		router.HandleFunc("/reports", h.ListReports).Methods("GET")
		router.HandleFunc("/reports/{id}", h.GetReport).Methods("GET")
	}
}

func (h *InterviewHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	session := h.service.NewSession()
	replies, err := session.Start()
	if err != nil {
		log.Printf("[ERROR] Failed to start interview: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "could not start the interview")
		return
	}
	h.sessions.Put(session.ID(), session)

	log.Printf("[INFO] Interview %s started over HTTP", session.ID())
	resp := view(session)
	resp.Messages = replies
	h.writeJSONResponse(w, http.StatusCreated, resp)
}

func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	var resp InterviewResponse
	err := h.sessions.Do(mux.Vars(r)["id"], func(s *interview.Session) error {
		resp = view(s)
		return nil
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

func (h *InterviewHandler) DeleteInterview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.sessions.Get(id); !ok {
		h.writeSessionError(w, interview.ErrSessionNotFound)
		return
	}
	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode answer JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var resp AnswerResponse
	err := h.sessions.Do(mux.Vars(r)["id"], func(s *interview.Session) error {
		out, err := s.SubmitAnswer(r.Context(), req.Answer)
		if err != nil {
			return err
		}
		resp = AnswerResponse{
			InterviewResponse: view(s),
			Correct:           out.Verdict.IsCorrect,
			HintShown:         out.HintShown,
			Resolved:          out.Resolved,
			Completed:         out.Completed,
		}
		resp.Messages = out.Replies
		return nil
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, resp)
}

func (h *InterviewHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var report *summary.Summary
	err := h.sessions.Do(mux.Vars(r)["id"], func(s *interview.Session) error {
		var err error
		report, err = s.Summary()
		return err
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, report)
}

func (h *InterviewHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		h.writeJSONResponse(w, http.StatusOK, metrics.Snapshot{})
		return
	}
	h.writeJSONResponse(w, http.StatusOK, h.metrics.GetSnapshot())
}

func (h *InterviewHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ids, err := h.reports.ListReports()
	if err != nil {
		log.Printf("[ERROR] Failed to list reports: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "could not list reports")
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string][]string{"reports": ids})
}

func (h *InterviewHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.LoadReport(mux.Vars(r)["id"])
	if errors.Is(err, os.ErrNotExist) {
		h.writeErrorResponse(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		log.Printf("[ERROR] Failed to load report: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "could not load report")
		return
	}
	h.writeJSONResponse(w, http.StatusOK, report)
}

func view(s *interview.Session) InterviewResponse {
	resp := InterviewResponse{
		ID:       s.ID(),
		State:    s.State(),
		Attempts: s.Attempts(),
		Tally:    s.Tally(),
	}
	if q, ok := s.CurrentQuestion(); ok {
		number, total := s.Progress()
		resp.Question = &QuestionView{
			Number:     number,
			Total:      total,
			Difficulty: string(q.Difficulty),
			Text:       q.Text,
		}
	}
	return resp
}

// writeSessionError переводит ошибки сессии в HTTP статусы
func (h *InterviewHandler) writeSessionError(w http.ResponseWriter, err error) {
	var evalErr *evaluator.Error
	switch {
	case errors.As(err, &evalErr):
		h.writeErrorResponse(w, http.StatusBadGateway, prompts.RetryMessage)
	case errors.Is(err, interview.ErrSessionNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "interview not found")
	case errors.Is(err, interview.ErrBusy):
		h.writeErrorResponse(w, http.StatusConflict, "an answer for this interview is still being evaluated")
	case errors.Is(err, interview.ErrNotAwaitingAnswer), errors.Is(err, interview.ErrSummaryUnavailable):
		h.writeErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, interview.ErrEmptyAnswer), errors.Is(err, interview.ErrAnswerTooLong):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] Unexpected interview error: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *InterviewHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *InterviewHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
