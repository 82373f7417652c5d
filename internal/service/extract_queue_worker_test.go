package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"feldbeleg/internal/domain"
	"feldbeleg/mocks"
)

type fakeDocService struct {
	DocumentService
	extracted chan uuid.UUID
}

func (f *fakeDocService) ExtractDocument(_ context.Context, doc *domain.Document, _ int) {
	f.extracted <- doc.ID
}

func TestExtractQueueWorkerDispatchesClaimedDocuments(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	docA := domain.Document{ID: uuid.New()}
	docB := domain.Document{ID: uuid.New()}

	repo.On("ClaimQueued", mock.Anything, 2).Return([]domain.Document{docA, docB}, nil).Once()
	repo.On("ClaimQueued", mock.Anything, mock.Anything).Return([]domain.Document{}, nil)

	fake := &fakeDocService{extracted: make(chan uuid.UUID, 4)}
	worker := NewExtractQueueWorker(repo, fake, ExtractQueueConfig{
		PollInterval: 10 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Start(ctx)
	}()

	got := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-fake.extracted:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for dispatched documents")
		}
	}
	cancel()
	<-done

	assert.True(t, got[docA.ID])
	assert.True(t, got[docB.ID])
}

func TestExtractQueueWorkerStopsOnCancel(t *testing.T) {
	repo := new(mocks.MockDocumentRepo)
	repo.On("ClaimQueued", mock.Anything, mock.Anything).Return([]domain.Document{}, nil)

	fake := &fakeDocService{extracted: make(chan uuid.UUID, 1)}
	worker := NewExtractQueueWorker(repo, fake, ExtractQueueConfig{
		PollInterval: 5 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
