package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

func snapshot() []domain.Passage {
	return []domain.Passage{
		{ChunkID: "faq1_c0", FAQID: "faq1", Title: "이체 한도", Text: "본문", Category: "한도", URL: "https://bank.example/faq/1", UpdatedAt: "2024-01-01", Channel: domain.ChannelBoth},
		{ChunkID: "faq2_c0", FAQID: "faq2", Title: "로그인 오류", Text: "본문", Category: "로그인", URL: "https://bank.example/faq/2", UpdatedAt: "2024-02-01", Channel: domain.ChannelWeb},
	}
}

func TestReplaceAllRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM faq_passages").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO faq_passages").
		WithArgs("faq1_c0", "faq1", "이체 한도", "본문", "한도", "https://bank.example/faq/1", "2024-01-01", "both").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO faq_passages").
		WithArgs("faq2_c0", "faq2", "로그인 오류", "본문", "로그인", "https://bank.example/faq/2", "2024-02-01", "web").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPassageRepository(db)
	if err := repo.ReplaceAll(context.Background(), snapshot()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM faq_passages").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO faq_passages").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := NewPassageRepository(db)
	if err := repo.ReplaceAll(context.Background(), snapshot()); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListAllReturnsCorpusOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"chunk_id", "faq_id", "title", "body", "category", "url", "updated_at", "channel"}).
		AddRow("faq1_c0", "faq1", "이체 한도", "본문", "한도", "https://bank.example/faq/1", "2024-01-01", "both").
		AddRow("faq2_c0", "faq2", "로그인 오류", "본문", "로그인", "https://bank.example/faq/2", "2024-02-01", "web")
	mock.ExpectQuery("SELECT chunk_id, faq_id, title, body, category, url, updated_at, channel").WillReturnRows(rows)

	repo := NewPassageRepository(db)
	got, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d passages, want 2", len(got))
	}
	if got[0].ChunkID != "faq1_c0" || got[0].Channel != domain.ChannelBoth {
		t.Errorf("first passage = %+v", got[0])
	}
	if got[1].Channel != domain.ChannelWeb {
		t.Errorf("second passage channel = %s", got[1].Channel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS faq_passages").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	repo := NewPassageRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
