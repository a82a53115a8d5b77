package models

import "testing"

func TestProject_DisplayStatus(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		stats  TaskStats
		want   string
	}{
		{"no tasks keeps stored", ProjectStatusActive, TaskStats{}, ProjectStatusActive},
		{"no tasks keeps archived", ProjectStatusArchived, TaskStats{}, ProjectStatusArchived},
		{"open tasks", ProjectStatusActive, TaskStats{Total: 3, Completed: 1, Todo: 2}, ProjectStatusInProgress},
		{"all done", ProjectStatusActive, TaskStats{Total: 3, Completed: 3}, ProjectStatusCompleted},
		{"archived with open tasks", ProjectStatusArchived, TaskStats{Total: 1, Todo: 1}, ProjectStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{Status: tt.stored}
			if got := p.DisplayStatus(tt.stats); got != tt.want {
				t.Errorf("DisplayStatus() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestProject_HasMember(t *testing.T) {
	p := &Project{
		OwnerID: 1,
		Members: []User{{ID: 2}, {ID: 3}},
	}

	if !p.HasMember(1) {
		t.Error("owner should count as a member")
	}
	if !p.HasMember(2) {
		t.Error("listed member should match")
	}
	if p.HasMember(4) {
		t.Error("unrelated user should not match")
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, s := range []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone} {
		if !ValidTaskStatus(s) {
			t.Errorf("ValidTaskStatus(%q) should be true", s)
		}
	}
	if ValidTaskStatus("cancelled") {
		t.Error("unknown status should be invalid")
	}
}

func TestValidTaskPriority(t *testing.T) {
	for _, p := range []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh} {
		if !ValidTaskPriority(p) {
			t.Errorf("ValidTaskPriority(%q) should be true", p)
		}
	}
	if ValidTaskPriority("urgent") {
		t.Error("unknown priority should be invalid")
	}
}
