package transport

import (
	"encoding/json"
	"net/http"

	"github.com/foodforall/marketplace/constant"
	"github.com/foodforall/marketplace/utils/errors"
)

type apiResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Code:    constant.ErrorTypeCode[constant.Successful],
		Message: constant.ErrorTypeMessage[constant.Successful],
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	customErr, ok := err.(errors.CustomError)
	if !ok {
		customErr = errors.SetCustomError(constant.ErrInternal)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(customErr.ErrorHTTPCode())
	_ = json.NewEncoder(w).Encode(apiResponse{
		Code:    customErr.ErrorCode(),
		Message: customErr.Error(),
	})
}
