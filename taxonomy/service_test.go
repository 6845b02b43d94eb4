package taxonomy

import (
	"context"
	"errors"
	"testing"

	"github.com/weddingcard/card_admin/backend"
	"github.com/weddingcard/card_admin/models"
)

func testContext() context.Context {
	return context.Background()
}

func TestFestiveChain(t *testing.T) {
	ctx := testContext()
	fb := &fakeBackend{}
	svc := NewService(fb)

	festive, err := svc.CreateParentCategory(ctx, "Festive")
	if err != nil {
		t.Fatalf("CreateParentCategory: %v", err)
	}
	diwali, err := svc.CreateCategory(ctx, festive.ID, "Diwali")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	cards, err := svc.CreateSubcategory(ctx, diwali.ID, "Cards")
	if err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	greeting, err := svc.CreateType(ctx, cards.ID, "Greeting")
	if err != nil {
		t.Fatalf("CreateType: %v", err)
	}

	want := []string{
		"POST /api/parent-category",
		"POST /api/parent-category/" + festive.ID + "/category",
		"POST /api/parent-category/" + festive.ID + "/category/" + diwali.ID + "/sub-category",
		"POST /api/parent-category/" + festive.ID + "/category/" + diwali.ID + "/sub-category/" + cards.ID + "/type",
	}
	got := fb.mutations()
	if len(got) != len(want) {
		t.Fatalf("expected %d mutations, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mutation %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	// unconfirmed deletes never reach the backend
	fb.calls = nil
	if err := svc.DeleteCategory(ctx, diwali.ID, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no calls, got %v", fb.calls)
	}

	// the backend refuses to delete a category that still has subcategories
	err = svc.DeleteCategory(ctx, diwali.ID, true)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected backend rejection, got %v", err)
	}
	if apiErr.Message != "Cannot delete category with existing sub categories" {
		t.Fatalf("backend message not surfaced verbatim: %q", apiErr.Message)
	}
	if got := fb.mutations(); len(got) != 1 || got[0] != "DELETE /api/parent-category/"+festive.ID+"/category/"+diwali.ID {
		t.Fatalf("unexpected mutations %v", got)
	}

	// Cards and Greeting are untouched and still resolve
	store, err := svc.Store(ctx)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	path, err := store.ResolveTypeID(greeting.ID)
	if err != nil {
		t.Fatalf("ResolveTypeID after rejected delete: %v", err)
	}
	if path.CategoryID != diwali.ID || path.SubCategoryID != cards.ID {
		t.Fatalf("unexpected path %+v", path)
	}
}

func TestUnresolvableChainSendsNothing(t *testing.T) {
	ctx := testContext()
	fb := &fakeBackend{
		parents:       []models.ParentCategory{{ID: "p1", Name: "Festive"}},
		categories:    []models.Category{{ID: "c1", Name: "Diwali"}},
		subcategories: []models.Subcategory{{ID: "s1", Name: "Cards", Category: &models.Category{ID: "c1"}}},
		types:         []models.Type{{ID: "t1", Name: "Greeting", SubCategory: &models.Subcategory{ID: "s1"}}},
	}
	svc := NewService(fb)

	calls := []struct {
		name string
		run  func() error
	}{
		{"create subcategory", func() error { _, err := svc.CreateSubcategory(ctx, "c1", "Boxes"); return err }},
		{"update subcategory", func() error { _, err := svc.UpdateSubcategory(ctx, "s1", "", "Boxes"); return err }},
		{"delete subcategory", func() error { return svc.DeleteSubcategory(ctx, "s1", true) }},
		{"create type", func() error { _, err := svc.CreateType(ctx, "s1", "Formal"); return err }},
		{"update type", func() error { _, err := svc.UpdateType(ctx, "t1", "", "Formal"); return err }},
		{"delete type", func() error { return svc.DeleteType(ctx, "t1", true) }},
		{"delete category", func() error { return svc.DeleteCategory(ctx, "c1", true) }},
		{"create category under unknown parent", func() error { _, err := svc.CreateCategory(ctx, "p9", "Holi"); return err }},
	}
	for _, c := range calls {
		err := c.run()
		var re *ResolutionError
		if !errors.As(err, &re) {
			t.Fatalf("%s: expected ResolutionError, got %v", c.name, err)
		}
	}
	if got := fb.mutations(); len(got) != 0 {
		t.Fatalf("expected no mutating requests, got %v", got)
	}
}

func TestNameIsRequired(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewService(fb)
	if _, err := svc.CreateParentCategory(testContext(), "   "); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no calls, got %v", fb.calls)
	}
}

func TestUpdateTypeMovesUnderAnotherSubcategory(t *testing.T) {
	fb := &fakeBackend{
		parents:    []models.ParentCategory{{ID: "p1", Name: "Festive"}},
		categories: []models.Category{{ID: "c1", Name: "Diwali", ParentCategory: &models.ParentCategory{ID: "p1"}}},
		subcategories: []models.Subcategory{
			{ID: "s1", Name: "Cards", Category: &models.Category{ID: "c1"}},
			{ID: "s2", Name: "Invites", Category: &models.Category{ID: "c1"}},
		},
		types: []models.Type{{ID: "t1", Name: "Greeting", SubCategory: &models.Subcategory{ID: "s1"}}},
	}
	svc := NewService(fb)
	if _, err := svc.UpdateType(testContext(), "t1", "s2", "Greeting"); err != nil {
		t.Fatalf("UpdateType: %v", err)
	}
	got := fb.mutations()
	if len(got) != 1 || got[0] != "PUT /api/parent-category/p1/category/c1/sub-category/s2/type/t1" {
		t.Fatalf("unexpected mutations %v", got)
	}
}
