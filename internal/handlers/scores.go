package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper/internal/repository"
)

const maxScoreBody = 4 << 10

// number decodes a JSON value the way a loose numeric coercion would:
// numbers as is, numeric strings parsed, booleans as 0 or 1, null and the
// empty string as 0. Anything else, or a missing field, is NaN.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	n.set = true
	n.value = math.NaN()

	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		n.value = 0
	case bytes.Equal(data, []byte("true")):
		n.value = 1
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.value = 0
		} else if f, err := strconv.ParseFloat(s, 64); err == nil {
			n.value = f
		}
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err == nil {
			n.value = f
		}
	}
	return nil
}

func (n number) Float() float64 {
	if !n.set {
		return math.NaN()
	}
	return n.value
}

// text keeps JSON strings and turns any other value into "".
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = text(s)
	return nil
}

type scorePayload struct {
	Name  text   `json:"name"`
	Mines number `json:"mines"`
	Size  text   `json:"size"`
	Time  number `json:"time"`
}

type scoreQuery struct {
	Size  string `schema:"size"`
	Limit string `schema:"limit"`
}

// parseLimit falls back to the default for anything that is not an
// integer; the store clamps the rest.
func parseLimit(s string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	if limit == 0 {
		return 1
	}
	return limit
}

type ScoreHandler struct {
	scores repository.Scores
}

func NewScoreHandler(scores repository.Scores) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

func (h ScoreHandler) Top(w http.ResponseWriter, r *http.Request) {
	var q scoreQuery
	if err := newDecoder().Decode(&q, r.URL.Query()); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	rows, err := h.scores.Top(r.Context(), repository.ScoreFilter{
		Size:  strings.TrimSpace(q.Size),
		Limit: parseLimit(q.Limit),
	})
	if err != nil {
		Log.WithError(err).Error("GET /api/scores failed")
		sendError(w, http.StatusInternalServerError, "Failed to fetch scores")
		return
	}
	sendData(w, rows)
}

func (h ScoreHandler) Recent(w http.ResponseWriter, r *http.Request) {
	var q scoreQuery
	if err := newDecoder().Decode(&q, r.URL.Query()); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	rows, err := h.scores.Recent(r.Context(), parseLimit(q.Limit))
	if err != nil {
		Log.WithError(err).Error("GET /api/scores/recent failed")
		sendError(w, http.StatusInternalServerError, "Failed to fetch scores")
		return
	}
	sendData(w, rows)
}

func (h ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var p scorePayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBody)).Decode(&p); err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid payload", err)
		return
	}

	score, err := repository.NewScore(string(p.Name), string(p.Size), p.Mines.Float(), p.Time.Float())
	if err != nil {
		sendRejection(w, http.StatusBadRequest, "Invalid payload", err)
		return
	}

	id, err := h.scores.Insert(r.Context(), score)
	if errors.Is(err, repository.ErrInvalidScore) {
		sendRejection(w, http.StatusBadRequest, "Invalid payload", err)
		return
	}
	if err != nil {
		Log.WithError(err).Error("POST /api/scores failed")
		sendError(w, http.StatusInternalServerError, "Failed to save score")
		return
	}

	Log.WithField("id", id).WithField("size", score.Size).Info("saved score")
	sendJSONOrLog(w, http.StatusOK, envelope{OK: true, ID: id})
}
