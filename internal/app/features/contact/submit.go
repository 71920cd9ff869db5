// internal/app/features/contact/submit.go
package contact

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	contactstore "github.com/dalemusser/folio/internal/app/store/contacts"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type submitRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// HandleSubmit handles POST /portfolios/{id}/contact.
//
//	201  stored message
//	404  no published portfolio with that id
//	409  this email already wrote to this portfolio
//	422  field validation failed
//	429  too many submissions from this client
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorsfeature.NotFound(w, r)
		return
	}

	if h.Limiter != nil {
		ip := ratelimit.ClientIP(r)
		if !h.Limiter.Allow(ip) {
			secs := int(math.Ceil(h.Limiter.RetryAfter(ip).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			h.Log.Warn("contact submission rate limited", zap.String("ip", ip))
			errorsfeature.Write(w, http.StatusTooManyRequests, "too many contact submissions, try again later")
			return
		}
	}

	var in submitRequest
	if err := respond.Decode(w, r, &in); err != nil {
		errorsfeature.Write(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit contact")
	defer cancel()

	public, err := h.Portfolios.Exists(ctx, bson.M{"_id": pid, "status": models.PortfolioStatusPublished})
	if err != nil {
		h.ErrLog.Respond(w, r, "check portfolio", err)
		return
	}
	if !public {
		errorsfeature.NotFound(w, r)
		return
	}

	// Cheap pre-check; the unique index still settles concurrent submissions.
	dup, err := h.Contacts.ExistsForPortfolioEmail(ctx, pid, in.Email)
	if err != nil {
		h.ErrLog.Respond(w, r, "check contact", err)
		return
	}
	if dup {
		errorsfeature.Write(w, http.StatusConflict, contactstore.ErrDuplicateSubmission.Error())
		return
	}

	c, err := h.Contacts.Submit(ctx, models.Contact{
		PortfolioID: pid,
		Email:       in.Email,
		Name:        in.Name,
		Message:     in.Message,
	})
	if err != nil {
		if errors.Is(err, contactstore.ErrDuplicateSubmission) {
			errorsfeature.Write(w, http.StatusConflict, contactstore.ErrDuplicateSubmission.Error())
			return
		}
		h.ErrLog.Respond(w, r, "submit contact", err)
		return
	}

	h.Log.Info("contact submitted", zap.String("portfolio_id", pid.Hex()))
	respond.JSON(w, http.StatusCreated, c)
}
