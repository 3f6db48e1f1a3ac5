package server

import (
	"net/http"
	"strings"
)

// handleUSSD speaks the telco gateway's form-encoded protocol. The reply is
// plain text prefixed with CON (keep the session open) or END (hang up).
func (s *Server) handleUSSD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeUSSD(w, "END Service error. Please try again later.")
		return
	}
	phone := strings.TrimSpace(r.PostFormValue("phoneNumber"))
	text := strings.TrimSpace(r.PostFormValue("text"))
	writeUSSD(w, s.listings.USSDReply(phone, text))
}

func writeUSSD(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(reply))
}
