package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleReport(id string) *InterviewReport {
	return &InterviewReport{
		InterviewID: id,
		Timestamp:   "2025-03-01T12:00:00Z",
		Turns: []TurnRecord{
			{QuestionID: "easy-1", Difficulty: "easy", Question: "Sum", Reference: "=SUM(A:A)", Answers: []string{"=SUM(A:A)"}, Correct: true, Feedback: "Great"},
			{QuestionID: "hard-1", Difficulty: "hard", Question: "Lookup", Reference: "=XLOOKUP()", Answers: []string{"?", "??"}, HintShown: true, Hint: "Try XLOOKUP", Feedback: "Not quite"},
		},
		Passed:     1,
		Failed:     1,
		HintsShown: 1,
		Summary:    "Solid basics.",
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "results"))
	want := sampleReport("abc")

	if err := store.SaveReport(want); err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	got, err := store.LoadReport("abc")
	if err != nil {
		t.Fatalf("LoadReport() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadReport() = %+v, want %+v", got, want)
	}
}

func TestSaveReportRequiresID(t *testing.T) {
	if err := NewStore(t.TempDir()).SaveReport(&InterviewReport{}); err == nil {
		t.Fatal("expected error for report without id")
	}
}

func TestListReports(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	for _, id := range []string{"b", "a"} {
		if err := store.SaveReport(sampleReport(id)); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "interview_dir.json"), 0755)

	ids, err := store.ListReports()
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("ListReports() = %v", ids)
	}
}

func TestListReportsMissingDir(t *testing.T) {
	ids, err := NewStore(filepath.Join(t.TempDir(), "nope")).ListReports()
	if err != nil || len(ids) != 0 {
		t.Errorf("ListReports() = %v, %v", ids, err)
	}
}

func TestPathStaysInsideDir(t *testing.T) {
	store := NewStore("/data")
	if got := store.path("../../etc/passwd"); got != "/data/interview_passwd.json" {
		t.Errorf("path() = %q", got)
	}
}
