// Package sandbox is an in-process stand-in for a form-post payment
// processor. Adapter tests run against it instead of a real sandbox
// account.
//
// The wire shape is the delimited key-value plaintext some processors
// still speak:
//
//	status=APPROVED, txid=19779424, avscode=Y, cvvcode=M
//	status=DECLINED, errormessage=Card declined
//	status=ERROR, errorcode=1300, errormessage=Parameter missing
//
// Outcomes are deterministic, selected by magic card numbers, so tests can
// drive every branch of an adapter without network flakiness.
package sandbox

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Magic card numbers the sandbox reacts to. Anything else approves.
const (
	CardDeclined   = "4000000000000002"
	CardBadCVV     = "4000000000000127"
	CardGarbled    = "4000000000000119" // reply is HTML, not the wire format
	CardForcesTest = "4000000000000903" // reply asserts test routing
)

// Server emulates one processor account.
type Server struct {
	logger *slog.Logger
	txid   int64
}

// New builds a sandbox. The first transaction id is fixed so expected
// values can be asserted literally.
func New(logger *slog.Logger) *Server {
	return &Server{
		logger: logger.With(slog.String("app", "sandbox")),
		txid:   19779423,
	}
}

// Handler returns the HTTP surface: a single POST /gateway endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.AppendRoutes(r)
	return r
}

func (s *Server) AppendRoutes(r chi.Router) {
	r.Post("/gateway", s.gateway)
}

func (s *Server) gateway(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	action := r.PostFormValue("action")
	s.logger.Info("sandbox request",
		slog.String("action", action),
		slog.String("amount", r.PostFormValue("amount")),
	)

	switch action {
	case "purchase", "authorize":
		s.payment(w, r)
	case "capture", "refund":
		s.followUp(w, r, true)
	case "void":
		s.followUp(w, r, false)
	case "store":
		s.store(w, r)
	default:
		s.reply(w, r, "status=ERROR, errorcode=1301, errormessage=Unknown action")
	}
}

func (s *Server) payment(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("amount") == "" {
		s.reply(w, r, "status=ERROR, errorcode=1300, errormessage=Parameter missing")
		return
	}

	number := r.PostFormValue("card_number")
	token := r.PostFormValue("token")
	if number == "" && token == "" {
		s.reply(w, r, "status=ERROR, errorcode=1300, errormessage=Parameter missing")
		return
	}

	switch number {
	case CardGarbled:
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>An internal error occurred</body></html>")
	case CardDeclined:
		s.reply(w, r, "status=DECLINED, errormessage=Card declined, avscode=N, cvvcode=M")
	case CardBadCVV:
		s.reply(w, r, "status=DECLINED, errormessage=Card verification failed, avscode=Y, cvvcode=N")
	case CardForcesTest:
		s.reply(w, r, fmt.Sprintf("status=APPROVED, txid=%d, avscode=Y, cvvcode=M, test=1", s.nextTxID()))
	default:
		s.reply(w, r, fmt.Sprintf("status=APPROVED, txid=%d, avscode=Y, cvvcode=M", s.nextTxID()))
	}
}

func (s *Server) followUp(w http.ResponseWriter, r *http.Request, needsAmount bool) {
	if r.PostFormValue("authorization") == "" {
		s.reply(w, r, "status=ERROR, errorcode=1300, errormessage=Parameter missing")
		return
	}
	if needsAmount && r.PostFormValue("amount") == "" {
		s.reply(w, r, "status=ERROR, errorcode=1300, errormessage=Parameter missing")
		return
	}
	s.reply(w, r, fmt.Sprintf("status=APPROVED, txid=%d", s.nextTxID()))
}

func (s *Server) store(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("card_number") == "" {
		s.reply(w, r, "status=ERROR, errorcode=1300, errormessage=Parameter missing")
		return
	}
	s.reply(w, r, fmt.Sprintf("status=APPROVED, token=tok_%s", uuid.New().String()))
}

// reply writes the wire response, echoing test routing when the caller
// asked for it.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, body string) {
	if r.PostFormValue("test") == "1" && !strings.Contains(body, "test=") {
		body += ", test=1"
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, body)
}

func (s *Server) nextTxID() int64 {
	return atomic.AddInt64(&s.txid, 1)
}
