package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
)

// fakeSubmitter 按给定的步长回调进度
type fakeSubmitter struct {
	steps  [][2]int64
	result string
	err    error
}

func (f *fakeSubmitter) Submit(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot, onProgress foliator.ProgressFunc) (*foliator.Result, error) {
	for _, s := range f.steps {
		onProgress(s[0], s[1])
	}
	if f.err != nil {
		return nil, f.err
	}
	return &foliator.Result{Body: io.NopCloser(strings.NewReader(f.result))}, nil
}

// MockSink 模拟结果保存
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(name, string(data))
	return args.String(0), args.Error(1)
}

type recorder struct {
	msgs []any
}

func (r *recorder) post(msg any) { r.msgs = append(r.msgs, msg) }

func selection() *intake.FileSelection {
	return &intake.FileSelection{Name: "acta.pdf", Path: "/tmp/acta.pdf", Size: 1000, MIMEType: "application/pdf"}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 1000))
	assert.Equal(t, 1, Percent(5, 1000))
	assert.Equal(t, 0, Percent(4, 1000))
	assert.Equal(t, 50, Percent(500, 1000))
	assert.Equal(t, 100, Percent(1000, 1000))
	assert.Equal(t, 100, Percent(2000, 1000))
	assert.Equal(t, 0, Percent(10, 0))
}

func TestResultName(t *testing.T) {
	assert.Equal(t, "Foliado_acta.pdf", ResultName("Foliado_", "acta.pdf"))
}

// TestController_Success 测试成功上传：进度单调递增，保存前达到 100
func TestController_Success(t *testing.T) {
	rec := &recorder{}
	sub := &fakeSubmitter{
		steps:  [][2]int64{{100, 1000}, {100, 1000}, {400, 1000}, {999, 1000}, {1000, 1000}},
		result: "%PDF-foliated",
	}
	sink := &MockSink{}
	c := New(sub, sink, "Foliado_", rec.post)

	var percentAtSave int
	sink.On("Save", "Foliado_acta.pdf", "%PDF-foliated").Run(func(mock.Arguments) {
		for _, m := range rec.msgs {
			c.Progress(m.(ProgressMsg))
		}
		rec.msgs = nil
		percentAtSave = c.Session().Percent
	}).Return("/home/u/Downloads/Foliado_acta.pdf", nil)

	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)
	assert.True(t, c.Active())
	assert.Equal(t, 0, c.Session().Percent)

	done := job()
	assert.Equal(t, 100, percentAtSave)

	out := c.Finish(done)
	require.NotNil(t, out)
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "/home/u/Downloads/Foliado_acta.pdf", out.Path)
	assert.Equal(t, "Foliado_acta.pdf", out.Name)
	assert.Equal(t, 100, c.Session().Percent)
	assert.False(t, c.Active())
	sink.AssertExpectations(t)
}

// racingSubmitter 在另一个 goroutine 中回调进度，并在返回后继续回调，
// 模拟服务端在请求体发送完之前就返回响应
type racingSubmitter struct {
	wg sync.WaitGroup
}

func (r *racingSubmitter) Submit(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot, onProgress foliator.ProgressFunc) (*foliator.Result, error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for i := int64(1); i <= 1000; i++ {
			onProgress(i, 1000)
		}
	}()
	onProgress(10, 1000)
	return &foliator.Result{Body: io.NopCloser(strings.NewReader("%PDF-early"))}, nil
}

// TestController_ConcurrentProgress 测试传输 goroutine 与任务 goroutine 并发回调进度（配合 -race）
func TestController_ConcurrentProgress(t *testing.T) {
	var (
		mu   sync.Mutex
		msgs []ProgressMsg
	)
	post := func(msg any) {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, msg.(ProgressMsg))
	}

	sub := &racingSubmitter{}
	sink := &MockSink{}
	sink.On("Save", "Foliado_acta.pdf", "%PDF-early").Return("/out/Foliado_acta.pdf", nil)
	c := New(sub, sink, "Foliado_", post)

	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)
	done := job()
	sub.wg.Wait()

	mu.Lock()
	for _, m := range msgs {
		c.Progress(m)
	}
	mu.Unlock()

	out := c.Finish(done)
	require.NotNil(t, out)
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, 100, c.Session().Percent)
}

// TestController_ProgressNeverDecreases 测试进度不会倒退
func TestController_ProgressNeverDecreases(t *testing.T) {
	c := New(&fakeSubmitter{}, &MockSink{}, "Foliado_", func(any) {})
	_, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)
	id := c.Session().ID

	seen := []int{}
	for _, loaded := range []int64{100, 600, 300, 600, 50, 900} {
		assert.True(t, c.Progress(ProgressMsg{Session: id, Loaded: loaded, Total: 1000}))
		seen = append(seen, c.Session().Percent)
	}
	assert.Equal(t, []int{10, 60, 60, 60, 60, 90}, seen)

	// unknown total leaves the percent alone
	c.Progress(ProgressMsg{Session: id, Loaded: 5})
	assert.Equal(t, 90, c.Session().Percent)

	// other sessions are ignored
	assert.False(t, c.Progress(ProgressMsg{Session: id + 1, Loaded: 1000, Total: 1000}))
	assert.Equal(t, 90, c.Session().Percent)
}

func TestController_ThrottlesProgressMessages(t *testing.T) {
	rec := &recorder{}
	steps := make([][2]int64, 0, 10000)
	for i := int64(1); i <= 10000; i++ {
		steps = append(steps, [2]int64{i, 10000})
	}
	sink := &MockSink{}
	sink.On("Save", mock.Anything, mock.Anything).Return("/tmp/x", nil)

	c := New(&fakeSubmitter{steps: steps}, sink, "Foliado_", rec.post)
	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)
	job()

	// 0..100 plus the forced final report
	assert.LessOrEqual(t, len(rec.msgs), 102)
	last := rec.msgs[len(rec.msgs)-1].(ProgressMsg)
	assert.Equal(t, last.Total, last.Loaded)
}

// TestController_SingleActiveSession 测试同一时间只允许一个上传
func TestController_SingleActiveSession(t *testing.T) {
	c := New(&fakeSubmitter{err: &foliator.NetworkError{Op: "submit", Err: errors.New("connection reset")}}, &MockSink{}, "Foliado_", func(any) {})

	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)

	_, err = c.Start(selection(), form.New(nil).Snapshot())
	assert.ErrorIs(t, err, ErrUploadActive)

	out := c.Finish(job())
	require.NotNil(t, out)
	assert.Equal(t, OutcomeNetwork, out.Kind)

	// once finished a new session can start
	_, err = c.Start(selection(), form.New(nil).Snapshot())
	assert.NoError(t, err)
}

func TestController_StatusOutcome(t *testing.T) {
	sink := &MockSink{}
	c := New(&fakeSubmitter{
		steps: [][2]int64{{1000, 1000}},
		err:   &foliator.StatusError{Op: "submit", StatusCode: 500},
	}, sink, "Foliado_", func(any) {})

	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)

	out := c.Finish(job())
	require.NotNil(t, out)
	assert.Equal(t, OutcomeStatus, out.Kind)
	assert.Equal(t, 500, out.StatusCode)
	sink.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestController_SaveFailure(t *testing.T) {
	sink := &MockSink{}
	sink.On("Save", mock.Anything, mock.Anything).Return("", errors.New("disk full"))
	c := New(&fakeSubmitter{result: "x"}, sink, "Foliado_", func(any) {})

	job, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)

	out := c.Finish(job())
	require.NotNil(t, out)
	assert.Equal(t, OutcomeLocal, out.Kind)
	var saveErr *SaveError
	assert.ErrorAs(t, out.Err, &saveErr)
}

func TestController_FinishIgnoresOtherSession(t *testing.T) {
	c := New(&fakeSubmitter{}, &MockSink{}, "Foliado_", func(any) {})
	assert.Nil(t, c.Finish(DoneMsg{Session: 7}))

	_, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)
	assert.Nil(t, c.Finish(DoneMsg{Session: 99}))
	assert.True(t, c.Active())
}

func TestController_Clear(t *testing.T) {
	c := New(&fakeSubmitter{}, &MockSink{}, "Foliado_", func(any) {})
	_, err := c.Start(selection(), form.New(nil).Snapshot())
	require.NoError(t, err)

	c.Clear()
	assert.NotNil(t, c.Session(), "an active session is not cleared")

	c.Finish(DoneMsg{Session: c.Session().ID, Err: errors.New("boom")})
	c.Clear()
	assert.Nil(t, c.Session())
}
