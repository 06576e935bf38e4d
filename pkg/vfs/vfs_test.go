package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestStore_Write(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		data         []byte
		expectError  error
		expectedUsed int
	}{
		{"Valid write", "Factorial.asm", []byte{1, 2, 3}, nil, 3},
		{"Double extension", "Factorial.vm.zip", []byte{1}, nil, 1},
		{"Path traversal", "../passwd", []byte{1}, ErrInvalidName, 0},
		{"Nested path", "out/Factorial.asm", []byte{1}, ErrInvalidName, 0},
		{"Leading dot", ".hidden", []byte{1}, ErrInvalidName, 0},
		{"Quota exceeded", "big.bin", make([]byte, MaxStoreBytes+1), ErrQuotaExceeded, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			err := s.Write(tt.filename, tt.data)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("Write() error = %v, want %v", err, tt.expectError)
			}
			if s.UsedBytes() != tt.expectedUsed {
				t.Errorf("UsedBytes = %d, expected %d", s.UsedBytes(), tt.expectedUsed)
			}
			if tt.expectError != nil {
				return
			}
			got, err := s.Read(tt.filename)
			if err != nil || !reflect.DeepEqual(got, tt.data) {
				t.Errorf("Read() = %v, %v", got, err)
			}
			created, modified, err := s.GetMeta(tt.filename)
			if err != nil || created.IsZero() || modified.IsZero() {
				t.Errorf("timestamps not set: %v %v %v", created, modified, err)
			}
		})
	}
}

func TestStore_ReadMissing(t *testing.T) {
	s := NewStore()
	if _, err := s.Read("missing.tac"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Size("../x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Size() error = %v, want ErrInvalidName", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore()
	if err := s.WriteString("Main.tac", "12345"); err != nil {
		t.Fatal(err)
	}
	created1, _, _ := s.GetMeta("Main.tac")

	time.Sleep(time.Millisecond)
	if err := s.WriteString("Main.tac", "1234567"); err != nil {
		t.Fatal(err)
	}
	if s.UsedBytes() != 7 {
		t.Errorf("UsedBytes after larger update = %d, expected 7", s.UsedBytes())
	}
	created2, modified2, _ := s.GetMeta("Main.tac")
	if !created2.Equal(created1) {
		t.Error("Created time should not change on update")
	}
	if !modified2.After(created2) {
		t.Error("Modified time should be after Created time after update")
	}

	if err := s.WriteString("Main.tac", "12"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Size("Main.tac"); n != 2 || s.UsedBytes() != 2 {
		t.Errorf("size %d used %d after smaller update", n, s.UsedBytes())
	}
}

func TestStore_DeepCopy(t *testing.T) {
	s := NewStore()
	data := []byte{1, 2, 3}
	if err := s.Write("Main.ast", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 99
	got, _ := s.Read("Main.ast")
	if got[0] == 99 {
		t.Error("Write did not copy; mutation of source affected stored data")
	}
}

func TestStore_ListAndKind(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"b.asm", "a.tokens", "a.ll"} {
		if err := s.WriteString(name, "x"); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"a.ll", "a.tokens", "b.asm"}
	if got := s.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if Kind("Main.vm.zip") != "zip" || Kind("Main.asm") != "asm" || Kind("Main") != "" {
		t.Error("Kind() returned unexpected values")
	}
}

func TestStore_PersistAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewStore()
	s.WriteString("Main.asm", "section .text")
	s.WriteString("Main.tac", "begin_main")

	if !s.Dirty() {
		t.Fatal("expected dirty store after writes")
	}
	if err := s.PersistTo(dir); err != nil {
		t.Fatalf("PersistTo failed: %v", err)
	}
	if s.Dirty() {
		t.Error("store still dirty after PersistTo")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "Main.asm"))
	if err != nil || string(raw) != "section .text" {
		t.Fatalf("persisted file = %q, %v", raw, err)
	}

	if err := s.Delete("Main.tac"); err != nil {
		t.Fatal(err)
	}
	if err := s.PersistTo(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Main.tac")); !os.IsNotExist(err) {
		t.Errorf("deleted artifact still on disk: %v", err)
	}

	os.WriteFile(filepath.Join(dir, "bad name.txt"), []byte("x"), 0644)
	loaded := NewStore()
	if err := loaded.LoadFrom(dir); err != nil {
		t.Fatal(err)
	}
	if got := loaded.List(); !reflect.DeepEqual(got, []string{"Main.asm"}) {
		t.Errorf("loaded = %v", got)
	}
	if loaded.Dirty() {
		t.Error("freshly loaded store should not be dirty")
	}
}

func TestStore_LoadMissingDir(t *testing.T) {
	if err := NewStore().LoadFrom(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("LoadFrom missing dir = %v, want nil", err)
	}
}

func TestStore_DeleteMissing(t *testing.T) {
	if err := NewStore().Delete("gone.asm"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() = %v", err)
	}
}
