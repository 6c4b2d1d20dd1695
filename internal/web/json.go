package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sweeney/victron-relay/internal/schedule"
)

// commandRequest is the body of POST /api/command.
type commandRequest struct {
	Kind string `json:"kind"`
	Val  any    `json:"val"`
}

// boolValue coerces the val field: accepted forms are 0, 1, true, false.
func (r commandRequest) boolValue() (bool, error) {
	switch v := r.Val.(type) {
	case bool:
		return v, nil
	case float64:
		if v == 0 {
			return false, nil
		}
		if v == 1 {
			return true, nil
		}
	}
	return false, errors.New("val must be 0|1")
}

// overrideRequest is the body of POST /api/override.
type overrideRequest struct {
	Mode string `json:"mode"`
}

// okResponse is the generic mutation reply.
type okResponse struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Hours int    `json:"hours,omitempty"`
}

// errorResponse carries a failure.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// scheduleResponse is the reply of GET /api/schedule.
type scheduleResponse struct {
	Rows      []scheduleRow `json:"rows"`
	Threshold float64       `json:"threshold"`
}

// scheduleRow is one hour of the schedule.
type scheduleRow struct {
	HourLocal string  `json:"hour_local"`
	Price     float64 `json:"price"`
	Action    string  `json:"action"`
}

func scheduleRows(sched schedule.Schedule) []scheduleRow {
	rows := make([]scheduleRow, 0, len(sched))
	for _, e := range sched {
		rows = append(rows, scheduleRow{
			HourLocal: e.Hour.Format("2006-01-02 15:04"),
			Price:     e.Price,
			Action:    string(e.Action),
		})
	}
	return rows
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	data, _ := json.Marshal(v)
	w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{OK: false, Error: msg})
}
