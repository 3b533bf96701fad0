package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/waitlyhq/waitly/internal/embed/domain"
	"github.com/waitlyhq/waitly/internal/embed/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupEmbed(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&domain.Configuration{}, &domain.CustomField{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestGetConfigurationCreatesDefault(t *testing.T) {
	svc := setupEmbed(t)
	projectID := snowflake.ID(100)

	cfg, err := svc.GetConfiguration(context.Background(), projectID)
	if err != nil {
		t.Fatalf("get configuration: %v", err)
	}
	if cfg.Title != "Join the waitlist" {
		t.Fatalf("title = %q", cfg.Title)
	}
	if !cfg.CollectName {
		t.Fatal("default should collect names")
	}

	// A second read returns the same row, not another default.
	again, err := svc.GetConfiguration(context.Background(), projectID)
	if err != nil {
		t.Fatalf("get configuration again: %v", err)
	}
	if again.ID != cfg.ID {
		t.Fatalf("configuration recreated: %v != %v", again.ID, cfg.ID)
	}
}

func TestUpdateConfigurationPatchesFields(t *testing.T) {
	svc := setupEmbed(t)
	projectID := snowflake.ID(100)

	title := "Early access"
	collect := false
	cfg, err := svc.UpdateConfiguration(context.Background(), domain.UpdateConfigurationRequest{
		ProjectID:   projectID,
		Title:       &title,
		CollectName: &collect,
	})
	if err != nil {
		t.Fatalf("update configuration: %v", err)
	}
	if cfg.Title != "Early access" || cfg.CollectName {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ButtonText != "Join waitlist" {
		t.Fatalf("button text = %q, untouched fields must keep defaults", cfg.ButtonText)
	}
}

func TestCreateFieldAssignsDisplayOrder(t *testing.T) {
	svc := setupEmbed(t)
	projectID := snowflake.ID(100)

	first, err := svc.CreateField(context.Background(), domain.CreateFieldRequest{
		ProjectID: projectID,
		Label:     "Company",
	})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	if first.DisplayOrder != 1 {
		t.Fatalf("order = %d, want 1", first.DisplayOrder)
	}
	if first.FieldType != "text" {
		t.Fatalf("type = %q, want default text", first.FieldType)
	}

	second, err := svc.CreateField(context.Background(), domain.CreateFieldRequest{
		ProjectID: projectID,
		Label:     "Team size",
		FieldType: "number",
	})
	if err != nil {
		t.Fatalf("create second field: %v", err)
	}
	if second.DisplayOrder != 2 {
		t.Fatalf("order = %d, want 2", second.DisplayOrder)
	}
}

func TestCreateFieldRejectsUnknownType(t *testing.T) {
	svc := setupEmbed(t)

	_, err := svc.CreateField(context.Background(), domain.CreateFieldRequest{
		ProjectID: 100,
		Label:     "Birthday",
		FieldType: "date",
	})
	if err != domain.ErrInvalidType {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}

func TestPublicSnapshot(t *testing.T) {
	svc := setupEmbed(t)
	projectID := snowflake.ID(100)

	if _, err := svc.CreateField(context.Background(), domain.CreateFieldRequest{
		ProjectID: projectID,
		Label:     "Company",
	}); err != nil {
		t.Fatalf("create field: %v", err)
	}

	snapshot, err := svc.PublicSnapshot(context.Background(), projectID)
	if err != nil {
		t.Fatalf("public snapshot: %v", err)
	}
	if snapshot.Configuration.Title == "" {
		t.Fatal("snapshot missing configuration")
	}
	if len(snapshot.Fields) != 1 || snapshot.Fields[0].Label != "Company" {
		t.Fatalf("fields = %+v", snapshot.Fields)
	}
}
