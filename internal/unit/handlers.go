package unit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"bobox/internal/api"
)

const maxBodyBytes = 1 << 20

const (
	msgNameTypeRequired = "Name and type are required fields"
	msgStatusRequired   = "Status is required"
)

var validate = validator.New()

type Handlers struct {
	Store   *Store
	Engine  *Engine
	Events  EventSink
	Metrics TransitionRecorder
}

// Routes mounts the unit endpoints on r. Paths are relative to the mount point.
func (h Handlers) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.UpdateStatus)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Get("/{id}/transitions", h.Transitions)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var filter Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed,
				"Invalid status parameter. Valid values are: "+StatusValues())
			return
		}
		filter = st
	}

	api.WriteData(w, http.StatusOK, h.Store.List(filter), "")
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "Unit ID is required")
		return
	}

	u, err := h.Store.Get(id)
	if err != nil {
		h.writeUnitError(w, r, err)
		return
	}
	api.WriteData(w, http.StatusOK, u, "")
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if !decode(w, r, &req, msgNameTypeRequired) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Type = strings.TrimSpace(req.Type)
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, validationMessage(err))
		return
	}

	kind, err := ParseKind(req.Type)
	if err != nil {
		h.writeUnitError(w, r, err)
		return
	}
	u, err := h.Store.Create(req.Name, kind)
	if err != nil {
		h.writeUnitError(w, r, err)
		return
	}

	api.LoggerFromContext(r.Context()).WithFields(logrus.Fields{
		"unit_id": u.ID,
		"name":    u.Name,
		"type":    u.Kind,
	}).Info("unit created")
	if h.Events != nil {
		h.Events.UnitCreated(r.Context(), u)
	}

	api.WriteData(w, http.StatusCreated, u, "Unit created successfully")
}

func (h Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "Unit ID is required")
		return
	}

	var req UpdateStatusRequest
	if !decode(w, r, &req, msgStatusRequired) {
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, msgStatusRequired)
		return
	}
	target, err := ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed,
			"Invalid status. Valid values are: "+StatusValues())
		return
	}

	tr, err := h.Engine.Apply(id, target)
	h.record(tr, target, err)
	if err != nil {
		h.writeUnitError(w, r, err)
		return
	}

	api.LoggerFromContext(r.Context()).WithFields(logrus.Fields{
		"unit_id": id,
		"from":    tr.Before.Status,
		"to":      tr.After.Status,
	}).Info("unit status changed")
	if h.Events != nil {
		h.Events.StatusChanged(r.Context(), tr)
	}

	api.WriteData(w, http.StatusOK, tr.After, "Unit status updated successfully")
}

func (h Handlers) Transitions(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeUnitError(w, r, err)
		return
	}

	next := h.Engine.LegalNextStates(u.Status)
	res := TransitionsResponse{ID: u.ID, Status: u.Status, Next: make([]StatusInfo, 0, len(next))}
	for _, s := range next {
		res.Next = append(res.Next, statusInfo(s))
	}
	api.WriteData(w, http.StatusOK, res, "")
}

// Statuses lists every status with its display data and legal successors.
func (h Handlers) Statuses(w http.ResponseWriter, r *http.Request) {
	all := AllStatuses()
	out := make([]StatusInfo, 0, len(all))
	for _, s := range all {
		out = append(out, statusInfo(s))
	}
	api.WriteData(w, http.StatusOK, out, "")
}

func (h Handlers) record(tr Transition, target Status, err error) {
	if h.Metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.Metrics.RecordTransition(tr.Before.Status, target, OutcomeAccepted)
	case errors.Is(err, ErrIllegalTransition):
		h.Metrics.RecordTransition(tr.Before.Status, target, OutcomeRejected)
	case errors.Is(err, ErrNotFound):
		h.Metrics.RecordTransition("", target, OutcomeNotFound)
	}
}

func (h Handlers) writeUnitError(w http.ResponseWriter, r *http.Request, err error) {
	var illegal *IllegalTransitionError
	switch {
	case errors.As(err, &illegal):
		api.WriteErrorDetails(w, http.StatusConflict, api.CodeInvalidStateTransition, illegal.Reason, map[string]any{
			"from":    illegal.From,
			"to":      illegal.To,
			"allowed": illegal.Allowed,
		})
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "Unit not found")
	case errors.Is(err, ErrInvalidName):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, msgNameTypeRequired)
	case errors.Is(err, ErrInvalidKind):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "Invalid unit type. Valid values are: capsule, cabin")
	case errors.Is(err, ErrInvalidStatus):
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "Invalid status. Valid values are: "+StatusValues())
	default:
		api.LoggerFromContext(r.Context()).WithError(err).Error("unit request failed")
		api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "Internal server error")
	}
}

// decode reads exactly one JSON object with no unknown fields. An empty body
// is answered with emptyMsg.
func decode(w http.ResponseWriter, r *http.Request, v any, emptyMsg string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid json"
		if errors.Is(err, io.EOF) {
			msg = emptyMsg
		}
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, msg)
		return false
	}
	if dec.More() {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return msgNameTypeRequired
	case fe.Field() == "Type":
		return "Invalid unit type. Valid values are: capsule, cabin"
	case fe.Field() == "Name" && fe.Tag() == "max":
		return fmt.Sprintf("Name must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
