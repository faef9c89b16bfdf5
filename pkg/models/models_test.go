package models

import (
	"errors"
	"testing"
	"time"
)

// ============== Entry Tests ==============

func TestEntryKind(t *testing.T) {
	file := &Entry{RelativePath: "dir/file.txt", Name: "file.txt", Size: 5}
	dir := &Entry{RelativePath: "dir", Name: "dir", IsDir: true}

	if file.Kind() != "File" {
		t.Errorf("Kind() = %s, want File", file.Kind())
	}
	if dir.Kind() != "Directory" {
		t.Errorf("Kind() = %s, want Directory", dir.Kind())
	}
}

func TestEntryClone(t *testing.T) {
	orig := &Entry{RelativePath: "a.txt", AbsolutePath: "/dst/a.txt", Fingerprint: "abc"}
	clone := orig.Clone()
	clone.AbsolutePath = "/dst/b.txt"

	if orig.AbsolutePath != "/dst/a.txt" {
		t.Errorf("Clone() shares state with the original: %s", orig.AbsolutePath)
	}
	if clone.Fingerprint != "abc" {
		t.Errorf("Clone().Fingerprint = %s, want abc", clone.Fingerprint)
	}
}

// ============== Operation Tests ==============

func TestOperationConstructors(t *testing.T) {
	tests := []struct {
		name   string
		op     Operation
		kind   OperationKind
		target string
		str    string
	}{
		{"Move", Move("a.txt", "sub/a.txt", false), OpMove, "sub/a.txt", "move a.txt -> sub/a.txt"},
		{"Add", Add("dir", true), OpAdd, "dir", "add dir"},
		{"Delete", Delete("old/x.txt", false), OpDelete, "old/x.txt", "delete old/x.txt"},
		{"Update", Update("a.txt"), OpUpdate, "a.txt", "update a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.op.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.op.Kind, tt.kind)
			}
			if tt.op.Target() != tt.target {
				t.Errorf("Target() = %s, want %s", tt.op.Target(), tt.target)
			}
			if tt.op.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.op.String(), tt.str)
			}
		})
	}
}

func TestOperationResultFailed(t *testing.T) {
	if (OperationResult{}).Failed() {
		t.Error("a result without error should not be failed")
	}
	if !(OperationResult{Err: errors.New("boom")}).Failed() {
		t.Error("a result with error should be failed")
	}
	if (OperationResult{Err: errors.New("cancelled"), Skipped: true}).Failed() {
		t.Error("a skipped result should not count as failed")
	}
}

// ============== SyncOperation Tests ==============

func TestSyncOperationValidate(t *testing.T) {
	valid := func() *SyncOperation {
		return &SyncOperation{
			SourcePath: "/source",
			DestPath:   "/dest",
			Interval:   30 * time.Second,
			BufferSize: 4096,
		}
	}

	t.Run("ValidOperation", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(op *SyncOperation)
		field  string
	}{
		{"EmptySourcePath", func(op *SyncOperation) { op.SourcePath = "" }, "SourcePath"},
		{"EmptyDestPath", func(op *SyncOperation) { op.DestPath = "" }, "DestPath"},
		{"ZeroInterval", func(op *SyncOperation) { op.Interval = 0 }, "Interval"},
		{"NegativeBandwidth", func(op *SyncOperation) { op.BandwidthLimit = -1 }, "BandwidthLimit"},
		{"SmallBufferSize", func(op *SyncOperation) { op.BufferSize = 512 }, "BufferSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := valid()
			tt.mutate(op)

			err := op.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error type = %T, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("ValidationError.Field = %s, want %s", ve.Field, tt.field)
			}
		})
	}

	t.Run("ZeroIntervalOnce", func(t *testing.T) {
		op := valid()
		op.Interval = 0
		op.Once = true
		if err := op.Validate(); err != nil {
			t.Errorf("Validate() error = %v, interval is irrelevant in once mode", err)
		}
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "TestField",
		Message: "test message",
	}

	expected := "TestField: test message"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

// ============== Report Tests ==============

func TestStatisticsRecord(t *testing.T) {
	var s Statistics
	s.Record(OperationResult{Operation: Move("a", "b", false)})
	s.Record(OperationResult{Operation: Add("c", false), Bytes: 10})
	s.Record(OperationResult{Operation: Add("d", false), Err: errors.New("denied")})
	s.Record(OperationResult{Operation: Delete("e", true)})
	s.Record(OperationResult{Operation: Update("f"), Bytes: 7})
	s.Record(OperationResult{Operation: Update("g"), Err: errors.New("skipped"), Skipped: true})

	if s.Moved.Succeeded != 1 || s.Added.Succeeded != 1 || s.Deleted.Succeeded != 1 || s.Updated.Succeeded != 1 {
		t.Errorf("unexpected success counters: %+v", s)
	}
	if s.Added.Failed != 1 {
		t.Errorf("Added.Failed = %d, want 1", s.Added.Failed)
	}
	if s.Errors() != 1 {
		t.Errorf("Errors() = %d, want 1", s.Errors())
	}
	if s.Changes() != 4 {
		t.Errorf("Changes() = %d, want 4", s.Changes())
	}
	if s.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", s.Skipped)
	}
	if s.BytesTransferred != 17 {
		t.Errorf("BytesTransferred = %d, want 17", s.BytesTransferred)
	}

	want := "Sync completed with 1 renamed/moved files, 1 added files, 1 deleted files, 1 updated files, and 1 errors."
	if s.Summary() != want {
		t.Errorf("Summary() = %q, want %q", s.Summary(), want)
	}
}

func TestCycleReportFinish(t *testing.T) {
	tests := []struct {
		name      string
		failed    int
		cancelled bool
		want      CycleStatus
	}{
		{"Success", 0, false, StatusSuccess},
		{"Partial", 2, false, StatusPartial},
		{"Cancelled", 1, true, StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CycleReport{StartTime: time.Now().Add(-time.Second)}
			r.Stats.Deleted.Failed = tt.failed
			r.Finish(tt.cancelled)

			if r.Status != tt.want {
				t.Errorf("Status = %s, want %s", r.Status, tt.want)
			}
			if r.Duration <= 0 {
				t.Error("Duration should be positive")
			}
		})
	}
}

func TestCycleStatusExitCode(t *testing.T) {
	tests := []struct {
		status CycleStatus
		want   int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{CycleStatus("unknown"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
