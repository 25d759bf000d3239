package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IloveChanel/visual-voicemail-app-sub001/internal/queue"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/cache"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/logger"
	"github.com/IloveChanel/visual-voicemail-app-sub001/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(true)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateVoicemail(ctx context.Context, v *model.ProcessedVoicemail) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Process(ctx context.Context, input model.VoicemailInput) (*model.ProcessedVoicemail, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProcessedVoicemail), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testTask() queue.VoicemailTask {
	return queue.VoicemailTask{
		VoicemailID:       "vm-123",
		AudioRef:          "vm-123.ogg",
		CallerNumber:      "+15550100",
		DurationSeconds:   20,
		PreferredLanguage: "en",
		Tier:              model.TierPremium,
		CreatedAt:         time.Now(),
	}
}

func completedRecord() *model.ProcessedVoicemail {
	rec := &model.ProcessedVoicemail{
		ID:           "generated-id",
		CallerNumber: "+15550100",
		AudioRef:     "vm-123.ogg",
		Status:       model.StatusCompleted,
		Meta:         model.JSONB{},
	}
	rec.SetTranscript("hello, calling about my appointment")
	return rec
}

func TestProcessor_ProcessTask(t *testing.T) {
	mockDB := new(MockStore)
	mockPipe := new(MockPipeline)
	mockCache := new(MockCache)

	task := testTask()
	rec := completedRecord()

	mockPipe.On("Process", mock.Anything, task.Input()).Return(rec, nil)
	mockDB.On("CreateVoicemail", mock.Anything, rec).Return(nil)
	mockCache.On("Set", mock.Anything, cache.TranscriptCacheKey("vm-123"), *rec.Transcript).Return(nil)

	p := NewProcessor(mockDB, mockPipe, mockCache, time.Minute)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	err = p.ProcessTask(data)

	assert.NoError(t, err)
	assert.Equal(t, "vm-123", rec.ID)
	mockDB.AssertExpectations(t)
	mockPipe.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProcessor_InvalidPayload(t *testing.T) {
	mockDB := new(MockStore)
	mockPipe := new(MockPipeline)

	p := NewProcessor(mockDB, mockPipe, nil, time.Minute)

	err := p.ProcessTask([]byte("not json"))

	assert.Error(t, err)
	mockPipe.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	mockDB.AssertNotCalled(t, "CreateVoicemail", mock.Anything, mock.Anything)
}

func TestProcessor_PipelineFailureStillPersisted(t *testing.T) {
	mockDB := new(MockStore)
	mockPipe := new(MockPipeline)

	task := testTask()

	rec := &model.ProcessedVoicemail{
		ID:     "generated-id",
		Status: model.StatusFailed,
		Meta:   model.JSONB{},
	}

	mockPipe.On("Process", mock.Anything, task.Input()).Return(rec, errors.New("transcription failed"))
	mockDB.On("CreateVoicemail", mock.Anything, rec).Return(nil)

	p := NewProcessor(mockDB, mockPipe, nil, time.Minute)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	// A domain failure is recorded, not requeued.
	err = p.ProcessTask(data)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusFailed, rec.Status)
	mockDB.AssertExpectations(t)
}

func TestProcessor_PersistFailureRequeues(t *testing.T) {
	mockDB := new(MockStore)
	mockPipe := new(MockPipeline)

	task := testTask()
	rec := completedRecord()
	dbErr := errors.New("connection refused")

	mockPipe.On("Process", mock.Anything, task.Input()).Return(rec, nil)
	mockDB.On("CreateVoicemail", mock.Anything, rec).Return(dbErr)

	p := NewProcessor(mockDB, mockPipe, nil, time.Minute)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	err = p.ProcessTask(data)

	assert.Error(t, err)
	assert.Equal(t, dbErr, err)
	// Persistence is retried before giving up.
	mockDB.AssertNumberOfCalls(t, "CreateVoicemail", 3)
}

func TestProcessor_CacheFailureIsBestEffort(t *testing.T) {
	mockDB := new(MockStore)
	mockPipe := new(MockPipeline)
	mockCache := new(MockCache)

	task := testTask()
	rec := completedRecord()

	mockPipe.On("Process", mock.Anything, task.Input()).Return(rec, nil)
	mockDB.On("CreateVoicemail", mock.Anything, rec).Return(nil)
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	p := NewProcessor(mockDB, mockPipe, mockCache, time.Minute)

	data, err := json.Marshal(task)
	require.NoError(t, err)

	err = p.ProcessTask(data)

	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}
