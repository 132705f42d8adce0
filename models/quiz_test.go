package models

import "testing"

func TestQuizOwnedBy(t *testing.T) {
	admin := "u-1"
	owned := Quiz{AdminID: &admin}

	if !owned.OwnedBy("u-1") {
		t.Fatalf("admin must own their quiz")
	}
	if owned.OwnedBy("u-2") {
		t.Fatalf("another user must not own the quiz")
	}
	if owned.OwnedBy("") {
		t.Fatalf("anonymous callers own nothing")
	}

	// Quizzes created without an account have no owner at all.
	anonymous := Quiz{}
	if anonymous.OwnedBy("u-1") || anonymous.OwnedBy("") {
		t.Fatalf("an adminless quiz is owned by nobody")
	}
}
