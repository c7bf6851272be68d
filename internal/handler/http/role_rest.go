package httphandler

import (
	"encoding/json"
	"net/http"

	"notification-service/internal/domain"
	"notification-service/internal/middleware"
	"notification-service/internal/usecase"
	"notification-service/pkg/response"
	xerrors "notification-service/pkg/xerrors"
)

type RoleHandler struct {
	uc *usecase.RoleUsecase
}

func NewRoleHandler(uc *usecase.RoleUsecase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// SetUserRole is the admin-only callable that assigns a role to a
// user: claims store first, then a merge into the profile record.
func (h *RoleHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	callerRole, _ := middleware.GetRole(r.Context())

	var body struct {
		UID  string `json:"uid"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid input")
		return
	}

	caller := usecase.Caller{UserID: callerID, Role: domain.Role(callerRole)}
	msg, err := h.uc.AssignRole(r.Context(), caller, body.UID, domain.Role(body.Role))
	if err != nil {
		if re, ok := xerrors.AsRoleError(err); ok {
			response.Error(w, roleErrorStatus(re.Code), re.Message)
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.Message(w, http.StatusOK, msg)
}

func roleErrorStatus(code xerrors.RoleErrorCode) int {
	switch code {
	case xerrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case xerrors.CodePermissionDenied:
		return http.StatusForbidden
	case xerrors.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
