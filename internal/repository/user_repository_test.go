package repository

import (
	"context"
	"testing"

	"todo-api/internal/model"
	"todo-api/internal/testutil"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	name := "Ada"
	user := &model.User{Email: "ada@example.com", Password: "hash", Name: &name}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create() did not assign an id")
	}

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("GetByEmail() = %v, %v", byEmail, err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetByEmail() id = %s, want %s", byEmail.ID, user.ID)
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetByID() = %v, %v", byID, err)
	}
	if byID.Name == nil || *byID.Name != "Ada" {
		t.Errorf("GetByID() name = %v", byID.Name)
	}

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("GetByEmail() missing = %v, %v; want nil, nil", missing, err)
	}
	missing, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil || missing != nil {
		t.Errorf("GetByID() missing = %v, %v; want nil, nil", missing, err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Email: "dup@example.com", Password: "x"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if err := repo.Create(ctx, &model.User{Email: "dup@example.com", Password: "y"}); err == nil {
		t.Fatal("Create() expected error for duplicate email")
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", "dup@example.com").Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("user rows = %d, want 1", count)
	}
}
