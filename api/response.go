package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/the-lightning-land/wlanctl/wifi"
)

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		a.log.Errorf("Could not respond with JSON: %v", err)
	}
}

// jsonError responds with the domain error code of err and the HTTP status
// matching it.
func (a *Api) jsonError(w http.ResponseWriter, err error) {
	e := wifi.AsError(err)

	status := httpStatus(e.Code)
	if status == http.StatusInternalServerError {
		a.log.Errorf("Request failed: %v", e)
	} else {
		a.log.Debugf("Request rejected: %v", e)
	}

	a.jsonResponse(w, &errorResponse{
		Code:  int(e.Code),
		Error: e.Error(),
	}, status)
}

func httpStatus(code wifi.Code) int {
	switch code {
	case wifi.InvalidParameterError, wifi.InvalidFormatError:
		return http.StatusBadRequest
	case wifi.OperationNotPermittedError:
		return http.StatusForbidden
	case wifi.ReferenceNotBoundError:
		return http.StatusNotFound
	case wifi.NotSupportedError:
		return http.StatusNotImplemented
	case wifi.TimeoutError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}

	if err != nil {
		return wifi.Wrap(wifi.InvalidFormatError, err, "could not decode request")
	}

	return nil
}
