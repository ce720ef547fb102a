package handler

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/foomo/promptserver/pkg/editor"
	"github.com/foomo/promptserver/pkg/metrics"
	"github.com/foomo/promptserver/pkg/repo"
	"github.com/foomo/promptserver/requests"
	"github.com/foomo/promptserver/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	HTTP struct {
		l      *zap.Logger
		path   string
		editor *editor.Editor
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the web facing side of the editor. Every route is a POST
// with a JSON body, replies are wrapped as {"reply": ...} and failures
// become tagged error objects - nothing panics across this boundary.
func NewHTTP(l *zap.Logger, editor *editor.Editor, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:      l.Named("http"),
		path:   "/promptserver",
		editor: editor,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.path = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputils.ServerError(h.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}

	jsonBytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}

	route := Route(strings.TrimPrefix(r.URL.Path, h.path+"/"))
	reply, errReply := h.handleRequest(r, route, jsonBytes)
	if errReply != nil {
		http.Error(w, errReply.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(reply)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) handleRequest(r *http.Request, route Route, jsonBytes []byte) ([]byte, error) {
	start := time.Now()

	reply, err := h.executeRequest(r, route, jsonBytes)
	result := "success"
	if err != nil {
		result = "error"
	}

	metrics.ServiceRequestCounter.WithLabelValues(string(route), result).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result).Observe(time.Since(start).Seconds())

	return reply, err
}

func (h *HTTP) executeRequest(r *http.Request, route Route, jsonBytes []byte) (replyBytes []byte, err error) {
	var (
		ctx               = r.Context()
		reply             interface{}
		apiErr            error
		jsonErr           error
		processIfJSONIsOk = func(err error, processingFunc func()) {
			if err != nil {
				jsonErr = err
				return
			}
			processingFunc()
		}
	)

	// handle and process
	switch route {
	case RouteGetDocument:
		reply = h.editor.CurrentDocument(ctx)
	case RouteReload:
		reply = h.editor.Reload(ctx)
	case RouteListVersions:
		keys, listErr := h.editor.ListVersions(ctx)
		if listErr != nil {
			apiErr = listErr
		} else {
			reply = &responses.Versions{Keys: keys}
		}
	case RoutePreviewVersion:
		previewRequest := &requests.PreviewVersion{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, previewRequest), func() {
			reply, apiErr = h.editor.PreviewVersion(ctx, previewRequest.Key)
		})
	case RouteSelectPrompt:
		selectRequest := &requests.SelectPrompt{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, selectRequest), func() {
			var text string
			text, apiErr = h.editor.SelectPrompt(ctx, selectRequest.Index)
			if apiErr == nil {
				reply = &responses.PromptText{Text: text}
			}
		})
	case RouteEditPrompt:
		editRequest := &requests.EditPrompt{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, editRequest), func() {
			candidate, editErr := h.editor.EditPrompt(ctx, editRequest.Index, editRequest.Text)
			if errors.Is(editErr, editor.ErrNoChange) {
				// nothing to publish, the reply stays null
				return
			}
			reply, apiErr = candidate, editErr
		})
	case RouteReplaceRaw:
		replaceRequest := &requests.ReplaceRaw{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, replaceRequest), func() {
			reply, apiErr = h.editor.ReplaceRaw(ctx, string(replaceRequest.JSON))
		})
	case RoutePublish:
		publishRequest := &requests.Publish{}
		processIfJSONIsOk(json.Unmarshal(jsonBytes, publishRequest), func() {
			var key string
			key, apiErr = h.editor.Publish(ctx, publishRequest.Candidate)
			if apiErr == nil {
				reply = &responses.Publish{Key: key}
			}
		})
	default:
		reply = responses.NewError(responses.CodeUnknownRoute, "unknown route: "+string(route))
	}

	// error handling
	if jsonErr != nil {
		h.l.Error("could not read incoming json", zap.Error(jsonErr))
		reply = &responses.Error{
			Status:  http.StatusBadRequest,
			Code:    responses.CodeBadRequest,
			Message: "could not read incoming json " + jsonErr.Error(),
		}
	} else if apiErr != nil {
		h.l.Error("an API error occurred", zap.String("route", string(route)), zap.Error(apiErr))
		reply = errorReply(apiErr)
	}

	return h.encodeReply(reply)
}

// errorReply maps the error taxonomy onto stable wire codes.
func errorReply(err error) *responses.Error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &responses.Error{Status: http.StatusNotFound, Code: responses.CodeNotFound, Message: err.Error()}
	case errors.Is(err, repo.ErrMalformedSnapshot):
		return &responses.Error{Status: http.StatusInternalServerError, Code: responses.CodeMalformedSnapshot, Message: err.Error()}
	case errors.Is(err, repo.ErrPublishFailed):
		return &responses.Error{Status: http.StatusInternalServerError, Code: responses.CodeWriteFailed, Message: err.Error()}
	case errors.Is(err, editor.ErrMalformedInput):
		return &responses.Error{Status: http.StatusBadRequest, Code: responses.CodeMalformedInput, Message: err.Error()}
	case errors.Is(err, editor.ErrIndexOutOfRange):
		return &responses.Error{Status: http.StatusBadRequest, Code: responses.CodeIndexOutOfRange, Message: err.Error()}
	case errors.Is(err, editor.ErrNoChange):
		return &responses.Error{Status: http.StatusOK, Code: responses.CodeNoChange, Message: err.Error()}
	default:
		return &responses.Error{Status: http.StatusInternalServerError, Code: responses.CodeBackendUnavailable, Message: err.Error()}
	}
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (h *HTTP) encodeReply(reply interface{}) (bytes []byte, err error) {
	bytes, err = json.Marshal(map[string]interface{}{
		"reply": reply,
	})
	if err != nil {
		h.l.Error("could not encode reply", zap.Error(err))
	}
	return
}
