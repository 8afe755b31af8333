package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type envelope struct {
	OK     bool   `json:"ok"`
	Data   any    `json:"data,omitempty"`
	ID     any    `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func SendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, status int, v any) {
	if err := SendJSON(w, status, v); err != nil {
		Log.WithError(err).WithField("status", status).Error("unable to send response")
	}
}

func sendData(w http.ResponseWriter, data any) {
	sendJSONOrLog(w, http.StatusOK, envelope{OK: true, Data: data})
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSONOrLog(w, status, envelope{Error: message})
}

func sendRejection(w http.ResponseWriter, status int, message string, reason error) {
	sendJSONOrLog(w, status, envelope{Error: message, Reason: reason.Error()})
}

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}
