package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"agroterra/internal/authz"
	"agroterra/internal/models"
)

type fakeAccountService struct {
	deactivated []int
}

func (f *fakeAccountService) GetByID(int) (*models.Account, error)   { return nil, nil }
func (f *fakeAccountService) Update(*models.Account) error           { return nil }
func (f *fakeAccountService) LinkTelegram(int, int64, bool) error    { return nil }
func (f *fakeAccountService) Deactivate(id int) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func deactivateCtx(w *httptest.ResponseRecorder, targetID string, accountID, roleID int) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/accounts/"+targetID+"/deactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: targetID}}
	c.Set("account_id", accountID)
	c.Set("role_id", roleID)
	return c
}

// Only admins may close someone else's account; elevated farm roles may not.
func TestDeactivateCrossAccountRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name       string
		roleID     int
		wantStatus int
		wantCalls  int
	}{
		{"worker denied", authz.RoleWorker, http.StatusForbidden, 0},
		{"agronomist denied", authz.RoleAgronomist, http.StatusForbidden, 0},
		{"owner denied", authz.RoleOwner, http.StatusForbidden, 0},
		{"admin allowed", authz.RoleAdmin, http.StatusOK, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAccountService{}
			h := NewAccountHandler(svc)

			w := httptest.NewRecorder()
			h.Deactivate(deactivateCtx(w, "9", 1, tc.roleID))

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Len(t, svc.deactivated, tc.wantCalls)
		})
	}
}

func TestDeactivateOwnAccountAnyRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeAccountService{}
	h := NewAccountHandler(svc)

	w := httptest.NewRecorder()
	h.Deactivate(deactivateCtx(w, "9", 9, authz.RoleWorker))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{9}, svc.deactivated)
}
