package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/guestgate/guestgate/application/port/inbound"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/infrastructure/http/response"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

const requestAccessPage = "requestAccess.html"

type AccessRequestHandler struct {
	accessRequestUseCase inbound.AccessRequestUseCase
	publicDir            string
	delay                time.Duration
	clock                clockwork.Clock
	logger               logger.Logger
}

type AccessRequestHandlerConfig struct {
	PublicDir string
	// Delay holds the success response back so the form's spinner is visible.
	Delay time.Duration
}

func NewAccessRequestHandler(accessRequestUseCase inbound.AccessRequestUseCase, conf AccessRequestHandlerConfig, clock clockwork.Clock, log logger.Logger) *AccessRequestHandler {
	return &AccessRequestHandler{
		accessRequestUseCase: accessRequestUseCase,
		publicDir:            conf.PublicDir,
		delay:                conf.Delay,
		clock:                clock,
		logger:               log,
	}
}

type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

// Form serves the static request access page.
func (h *AccessRequestHandler) Form(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.publicDir, requestAccessPage))
}

func (h *AccessRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	input, err := decodeAccessRequest(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if _, err := h.accessRequestUseCase.Submit(r.Context(), input); err != nil {
		response.Error(w, domainerr.GetHTTPStatusCode(err), persistenceMessage(err))
		return
	}

	select {
	case <-h.clock.After(h.delay):
	case <-r.Context().Done():
		h.logger.Debug(r.Context(), "Client went away before the access request response", nil)
		return
	}

	response.OK(w, RedirectResponse{Redirect: "/"})
}

// decodeAccessRequest accepts JSON and urlencoded bodies. JSON values of any
// type are recorded as their string form; missing and null fields are empty.
func decodeAccessRequest(r *http.Request) (inbound.AccessRequestInput, error) {
	var input inbound.AccessRequestInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		body := map[string]interface{}{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		// an empty body records an empty row like an empty form does
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return input, err
		}
		input.FullName = jsonField(body, "fullname")
		input.Email = jsonField(body, "email")
		input.IDNumber = jsonField(body, "idNumber")
		input.IDType = jsonField(body, "idType")
		input.RequestType = jsonField(body, "requestType")
		return input, nil
	}

	if err := r.ParseForm(); err != nil {
		return input, err
	}
	input.FullName = r.PostForm.Get("fullname")
	input.Email = r.PostForm.Get("email")
	input.IDNumber = r.PostForm.Get("idNumber")
	input.IDType = r.PostForm.Get("idType")
	input.RequestType = r.PostForm.Get("requestType")
	return input, nil
}

func jsonField(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		// nested values keep their JSON form
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return fmt.Sprint(v)
	}
}

// persistenceMessage is the text of the underlying write failure.
func persistenceMessage(err error) string {
	var appErr *domainerr.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return err.Error()
}
