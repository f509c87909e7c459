package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

// goalView is a goal together with its derived progress.
type goalView struct {
	core.Goal
	Progress core.Progress `json:"progress"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ver := s.store.Snapshot()
	key := strconv.FormatUint(ver, 10)
	summary, ok := s.summaryCache.Get(key)
	if !ok {
		summary = core.Summarize(snap)
		s.summaryCache.Set(key, summary)
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, ver := s.store.Snapshot()
	key := strconv.FormatUint(ver, 10)
	breakdown, ok := s.breakdownCache.Get(key)
	if !ok {
		breakdown = core.ExpensesByCategory(snap)
		s.breakdownCache.Set(key, breakdown)
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := s.now()
	snap, ver := s.store.Snapshot()
	// The series depends on the current month as well as the snapshot.
	key := strconv.FormatUint(ver, 10) + ":" + now.Format("2006-01")
	trend, ok := s.trendCache.Get(key)
	if !ok {
		trend = core.MonthlySeries(snap, now)
		s.trendCache.Set(key, trend)
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, _ := s.store.Snapshot()
		writeJSON(w, http.StatusOK, snap.Transactions)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type transactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := s.service.AddTransaction(r.Context(), services.TransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: sanitizeInput(req.Description),
		Date:        req.Date,
	})
	if err != nil {
		if errors.Is(err, records.ErrDurability) {
			// The mutation applied in memory; surface the record and log the
			// persistence failure.
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction saved without durability",
				log.FieldTransactionID, t.ID, log.FieldError, err)
			writeJSON(w, http.StatusCreated, t)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, _ := s.store.Snapshot()
		today := core.DateOf(s.now())
		views := make([]goalView, len(snap.Goals))
		for i, g := range snap.Goals {
			views[i] = goalView{Goal: g, Progress: core.GoalProgress(g, today)}
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPost:
		s.createGoal(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type goalRequest struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	Category string `json:"category"`
	Deadline string `json:"deadline"`
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := s.service.AddGoal(r.Context(), services.GoalInput{
		Name:     sanitizeInput(req.Name),
		Target:   req.Target,
		Category: req.Category,
		Deadline: req.Deadline,
	})
	if err != nil {
		if errors.Is(err, records.ErrDurability) {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Goal saved without durability",
				log.FieldGoalID, g.ID, log.FieldError, err)
			writeJSON(w, http.StatusCreated, g)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

type goalProgressRequest struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req goalProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := s.service.SetGoalProgress(r.Context(), req.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, records.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, records.ErrDurability):
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Goal progress saved without durability",
				log.FieldGoalID, g.ID, log.FieldError, err)
			writeJSON(w, http.StatusOK, g)
		default:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
