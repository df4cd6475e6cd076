package services_test

import (
	"context"
	"errors"
	"testing"

	"flowerstream/internal/domain"
	"flowerstream/internal/services"
)

func TestOrderStatusTransition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.cart.Add(ctx, olena, "peony-pink", 1); err != nil {
		t.Fatal(err)
	}
	o := placeOrder(t, e, olena)

	if _, err := e.orderSvc.SetStatus(ctx, o.ID, domain.OrderStatusPending); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	got, err := e.orderSvc.SetStatus(ctx, o.ID, domain.OrderStatusConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderStatusConfirmed {
		t.Fatalf("want confirmed, got %s", got.Status)
	}
	if _, err := e.orderSvc.SetStatus(ctx, o.ID, domain.OrderStatusConfirmed); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("confirming twice: want ErrInvalidTransition, got %v", err)
	}
	if _, err := e.orderSvc.SetStatus(ctx, "missing", domain.OrderStatusConfirmed); !errors.Is(err, services.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestOrderDetailAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.cart.Add(ctx, olena, "aster", 3); err != nil {
		t.Fatal(err)
	}
	o := placeOrder(t, e, olena)

	owner := &domain.User{ID: olena, Role: domain.RoleUser}
	other := &domain.User{ID: taras, Role: domain.RoleUser}
	admin := &domain.User{ID: "u-admin", Role: domain.RoleAdmin}

	if got, err := e.orderSvc.Detail(ctx, owner, o.ID); err != nil || len(got.Lines) != 1 {
		t.Fatalf("owner: %v %+v", err, got)
	}
	if _, err := e.orderSvc.Detail(ctx, other, o.ID); !errors.Is(err, services.ErrOrderNotFound) {
		t.Fatalf("other user: want ErrOrderNotFound, got %v", err)
	}
	if _, err := e.orderSvc.Detail(ctx, admin, o.ID); err != nil {
		t.Fatalf("admin: %v", err)
	}

	hist, err := e.orderSvc.History(ctx, olena)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Lines[0].Qty != 3 {
		t.Fatalf("unexpected history %+v", hist)
	}
	all, err := e.orderSvc.AdminList(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("want 1 order, got %d", len(all))
	}
}

func TestAuthRegisterLoginLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.auth.Register(ctx, "mariia", "Flow3rs!ok")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("new accounts are customers, got %s", u.Role)
	}
	if _, err := e.auth.Register(ctx, "MARIIA", "Flow3rs!ok"); !errors.Is(err, services.ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}

	if _, err := e.auth.Login(ctx, "sid-1", "mariia", "wrong-pass1!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, err := e.auth.Login(ctx, "sid-1", "nobody", "Flow3rs!ok"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("unknown user: want ErrBadCreds, got %v", err)
	}
	if _, err := e.auth.Login(ctx, "sid-1", "mariia", "Flow3rs!ok"); err != nil {
		t.Fatal(err)
	}

	cur, err := e.auth.CurrentUser(ctx, "sid-1")
	if err != nil || cur == nil || cur.ID != u.ID {
		t.Fatalf("current user: %v %+v", err, cur)
	}
	if err := e.auth.Logout(ctx, "sid-1"); err != nil {
		t.Fatal(err)
	}
	cur, err = e.auth.CurrentUser(ctx, "sid-1")
	if err != nil || cur != nil {
		t.Fatalf("after logout want anonymous, got %v %+v", err, cur)
	}
}
