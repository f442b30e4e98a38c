package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/company-management/internal/identity"
	"github.com/frahmantamala/company-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Middleware Suite")
}

func serve(mw func(http.Handler) http.Handler, principal *identity.Identity) *httptest.ResponseRecorder {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		req = req.WithContext(identity.ContextWith(req.Context(), principal))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("RequireRole", func() {
	It("passes a principal whose role is allowed", func() {
		p := &identity.Identity{UserID: 1, Role: identity.RoleAdmin, AccountState: identity.AccountActive}
		rec := serve(middleware.RequireRole(identity.RoleAdmin), p)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("rejects a principal outside the allowed set", func() {
		p := &identity.Identity{UserID: 2, Role: identity.RoleGuest, AccountState: identity.AccountActive}
		rec := serve(middleware.RequireRole(identity.RoleAdmin, identity.RoleEmployee), p)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("rejects requests without a principal", func() {
		rec := serve(middleware.RequireRole(identity.RoleAdmin), nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("RequirePermission", func() {
	branch := int64(7)

	It("lets admins through without consulting a matrix", func() {
		p := &identity.Identity{UserID: 1, Role: identity.RoleAdmin, AccountState: identity.AccountActive}
		rec := serve(middleware.RequirePermission(identity.ModuleProducts, identity.ActionDelete), p)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("passes an employee with the action granted", func() {
		p := &identity.Identity{
			UserID:           2,
			Role:             identity.RoleEmployee,
			AccountState:     identity.AccountActive,
			AssignedBranchID: &branch,
			Permissions: identity.PermissionMatrix{
				identity.ModuleProducts: {CanEdit: true},
			},
		}
		rec := serve(middleware.RequirePermission(identity.ModuleProducts, identity.ActionEdit), p)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("rejects an employee whose matrix does not grant the action", func() {
		p := &identity.Identity{
			UserID:           2,
			Role:             identity.RoleEmployee,
			AccountState:     identity.AccountActive,
			AssignedBranchID: &branch,
			Permissions: identity.PermissionMatrix{
				identity.ModuleProducts: {CanEdit: true},
			},
		}
		rec := serve(middleware.RequirePermission(identity.ModuleProducts, identity.ActionDelete), p)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("rejects requests without a principal", func() {
		rec := serve(middleware.RequirePermission(identity.ModuleProducts, identity.ActionView), nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
