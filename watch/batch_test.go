package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/resmerge/resource"
)

func ev(path string, status resource.FileStatus) resource.ChangeEvent {
	return resource.ChangeEvent{Root: "/r", Path: path, Status: status}
}

func TestBatchCoalesces(t *testing.T) {
	tests := []struct {
		name  string
		input []resource.ChangeEvent
		want  []resource.ChangeEvent
	}{
		{
			name:  "single event",
			input: []resource.ChangeEvent{ev("/r/a/x", resource.StatusChanged)},
			want:  []resource.ChangeEvent{ev("/r/a/x", resource.StatusChanged)},
		},
		{
			name:  "new then written stays new",
			input: []resource.ChangeEvent{ev("/r/a/x", resource.StatusNew), ev("/r/a/x", resource.StatusChanged)},
			want:  []resource.ChangeEvent{ev("/r/a/x", resource.StatusNew)},
		},
		{
			name:  "new then removed is removed",
			input: []resource.ChangeEvent{ev("/r/a/x", resource.StatusNew), ev("/r/a/x", resource.StatusRemoved)},
			want:  []resource.ChangeEvent{ev("/r/a/x", resource.StatusRemoved)},
		},
		{
			name:  "removed then new is a change",
			input: []resource.ChangeEvent{ev("/r/a/x", resource.StatusRemoved), ev("/r/a/x", resource.StatusNew)},
			want:  []resource.ChangeEvent{ev("/r/a/x", resource.StatusChanged)},
		},
		{
			name:  "changed then removed is removed",
			input: []resource.ChangeEvent{ev("/r/a/x", resource.StatusChanged), ev("/r/a/x", resource.StatusRemoved)},
			want:  []resource.ChangeEvent{ev("/r/a/x", resource.StatusRemoved)},
		},
		{
			name: "first-seen order is kept",
			input: []resource.ChangeEvent{
				ev("/r/a/2", resource.StatusNew),
				ev("/r/a/1", resource.StatusChanged),
				ev("/r/a/2", resource.StatusChanged),
				ev("/r/a/3", resource.StatusRemoved),
			},
			want: []resource.ChangeEvent{
				ev("/r/a/2", resource.StatusNew),
				ev("/r/a/1", resource.StatusChanged),
				ev("/r/a/3", resource.StatusRemoved),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBatch()
			for _, e := range tt.input {
				b.add(e)
			}
			assert.Equal(t, len(tt.want), b.len())
			assert.Equal(t, tt.want, b.flush())
			assert.Equal(t, 0, b.len())
		})
	}
}
