package session

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
	"github.com/HaiFongPan/folio-cli/internal/schedule"
	"github.com/HaiFongPan/folio-cli/internal/utils"
)

const mib = int64(1024 * 1024)

// fakeDispatcher 把消息和任务排队，由 pump 依次执行
type fakeDispatcher struct {
	queue []any
	jobs  []func() any
}

func (d *fakeDispatcher) Post(msg any)      { d.queue = append(d.queue, msg) }
func (d *fakeDispatcher) Go(job func() any) { d.jobs = append(d.jobs, job) }

// MockFetcher 模拟预览服务
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Preview(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot) ([]byte, error) {
	args := m.Called(sel.Name, snap.Get(form.FieldStartNumber))
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// fakeSubmitter 模拟处理服务
type fakeSubmitter struct {
	status int
	netErr bool
	calls  int
	fields form.Snapshot
}

func (f *fakeSubmitter) Submit(ctx context.Context, sel *intake.FileSelection, snap form.Snapshot, onProgress foliator.ProgressFunc) (*foliator.Result, error) {
	f.calls++
	f.fields = snap
	if f.netErr {
		return nil, &foliator.NetworkError{Op: "submit", Err: io.ErrUnexpectedEOF}
	}
	for _, loaded := range []int64{0, 250, 500, 750, 1000} {
		onProgress(loaded, 1000)
	}
	if f.status != 0 && f.status != 200 {
		return nil, &foliator.StatusError{Op: "submit", StatusCode: f.status}
	}
	return &foliator.Result{Body: io.NopCloser(strings.NewReader("%PDF-foliated"))}, nil
}

type harness struct {
	t         *testing.T
	machine   *Machine
	clock     *schedule.Manual
	dispatch  *fakeDispatcher
	fetcher   *MockFetcher
	submitter *fakeSubmitter
	store     *preview.Store
	outDir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := preview.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		t:         t,
		clock:     schedule.NewManual(),
		dispatch:  &fakeDispatcher{},
		fetcher:   &MockFetcher{},
		submitter: &fakeSubmitter{status: 200},
		store:     store,
		outDir:    t.TempDir(),
	}

	h.machine = New(Deps{
		Policy:        intake.DefaultPolicy(),
		Form:          form.New(nil),
		Fetcher:       h.fetcher,
		Submitter:     h.submitter,
		Sink:          utils.NewResultSaver(h.outDir),
		Store:         store,
		Clock:         h.clock,
		Dispatcher:    h.dispatch,
		CountPages:    func(string) (int, error) { return 3, nil },
		Debounce:      750 * time.Millisecond,
		AdoptDelay:    500 * time.Millisecond,
		PreviewWidth:  60,
		PreviewHeight: 60,
		ResultPrefix:  "Foliado_",
	})
	return h
}

// pump 处理所有排队的消息和任务，任务内部发出的消息先于任务结果被处理
func (h *harness) pump() {
	for len(h.dispatch.queue) > 0 || len(h.dispatch.jobs) > 0 {
		if len(h.dispatch.queue) > 0 {
			msg := h.dispatch.queue[0]
			h.dispatch.queue = h.dispatch.queue[1:]
			h.machine.Handle(msg)
			continue
		}
		job := h.dispatch.jobs[0]
		h.dispatch.jobs = h.dispatch.jobs[1:]
		h.dispatch.queue = append(h.dispatch.queue, job())
	}
}

func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.pump()
}

func sparsePDF(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func pngPayload(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 28))))
	return buf.Bytes()
}

// configure 选择文件并等待进入配置界面
func (h *harness) configure(path string) {
	h.t.Helper()
	require.True(h.t, h.machine.Handle(PickFiles{Paths: []string{path}}))
	require.Equal(h.t, StateFileAdopted, h.machine.State())
	h.advance(500 * time.Millisecond)
	require.Equal(h.t, StateConfiguring, h.machine.State())
}

func TestMachine_InitialState(t *testing.T) {
	h := newHarness(t)
	v := h.machine.View()

	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, "#0001", v.FolioLabel)
	assert.False(t, v.SubmitEnabled)
	assert.Equal(t, PromptIdle, v.DropPrompt)
	assert.Equal(t, preview.MessageNoDocument, v.Preview.Message)
	assert.Nil(t, v.Notice)
	assert.False(t, v.Progress.Visible)
}

// TestMachine_HardLimitRejection 测试 2.5 GiB 文件被立即拒绝并重置
func TestMachine_HardLimitRejection(t *testing.T) {
	h := newHarness(t)
	path := sparsePDF(t, "enorme.pdf", 2*1024*mib+512*mib)

	h.machine.Handle(PickFiles{Paths: []string{path}})

	v := h.machine.View()
	require.NotNil(t, v.Notice)
	assert.Contains(t, v.Notice.Text, "2560.00 MB")
	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.Selection)
	assert.Empty(t, v.Input)
	assert.Equal(t, PromptIdle, v.DropPrompt)
	assert.False(t, v.SubmitEnabled)
	assert.Equal(t, 0, h.clock.Pending())
}

// TestMachine_NoticeBlocksInput 测试提示框未关闭前忽略用户输入
func TestMachine_NoticeBlocksInput(t *testing.T) {
	h := newHarness(t)
	h.machine.Handle(PickFiles{Paths: []string{sparsePDF(t, "enorme.pdf", 3*1024*mib)}})
	require.NotNil(t, h.machine.View().Notice)

	small := sparsePDF(t, "ok.pdf", mib)
	h.machine.Handle(PickFiles{Paths: []string{small}})
	assert.Equal(t, StateIdle, h.machine.State())

	h.machine.Handle(DismissNotice{})
	h.machine.Handle(DropFiles{Text: "'" + small + "'"})
	assert.Equal(t, StateFileAdopted, h.machine.State())
	assert.Equal(t, "📄 ok.pdf", h.machine.View().DropPrompt)
}

// TestMachine_SoftLimitSuppressesPreview 测试 50 MiB 文件不请求预览但可以提交
func TestMachine_SoftLimitSuppressesPreview(t *testing.T) {
	h := newHarness(t)
	h.configure(sparsePDF(t, "grande.pdf", 50*mib))

	v := h.machine.View()
	assert.Contains(t, v.Preview.Message, "PREVIEW DISABLED")
	assert.Contains(t, v.Preview.Message, "50.0 MB")
	assert.True(t, v.SubmitEnabled)
	assert.Equal(t, 0, v.Pages, "page count is only read within the preview limit")
	assert.Equal(t, 0, h.clock.Pending())

	h.advance(time.Second)
	h.fetcher.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
}

// TestMachine_PreviewSuccess 测试预览成功后显示图片和说明
func TestMachine_PreviewSuccess(t *testing.T) {
	h := newHarness(t)
	h.fetcher.On("Preview", "acta.pdf", "1").Return(pngPayload(t), nil)

	h.configure(sparsePDF(t, "acta.pdf", mib))
	assert.Equal(t, 3, h.machine.View().Pages)

	h.advance(750 * time.Millisecond)

	slot := h.machine.View().Preview
	assert.Equal(t, preview.MessageReady, slot.Message)
	require.NotNil(t, slot.Image)
	assert.True(t, slot.ImageVisible)
	assert.Equal(t, 1, h.store.Live())
	h.fetcher.AssertNumberOfCalls(t, "Preview", 1)
}

// TestMachine_FieldEditsUpdateFolioAndDebounce 测试编辑字段刷新编号并合并预览请求
func TestMachine_FieldEditsUpdateFolioAndDebounce(t *testing.T) {
	h := newHarness(t)
	h.fetcher.On("Preview", "acta.pdf", "7").Return(pngPayload(t), nil)
	h.configure(sparsePDF(t, "acta.pdf", mib))

	for _, v := range []string{"", "7"} {
		h.machine.Handle(SetField{Name: form.FieldStartNumber, Value: v})
		h.advance(100 * time.Millisecond)
	}
	assert.Equal(t, "#0007", h.machine.View().FolioLabel)

	h.advance(750 * time.Millisecond)
	h.fetcher.AssertNumberOfCalls(t, "Preview", 1)
	h.fetcher.AssertCalled(t, "Preview", "acta.pdf", "7")
}

func TestMachine_EditsIgnoredOutsideConfiguring(t *testing.T) {
	h := newHarness(t)
	h.machine.Handle(SetField{Name: form.FieldStartNumber, Value: "9"})
	h.machine.Handle(CycleField{Name: form.FieldCorner, Delta: 1})

	assert.Equal(t, "#0001", h.machine.View().FolioLabel)
	assert.Equal(t, "bottom-right", h.machine.form.Get(form.FieldCorner))
}

// TestMachine_ReplaceDuringAdoption 测试过渡期间更换文件，只有最后一个生效
func TestMachine_ReplaceDuringAdoption(t *testing.T) {
	h := newHarness(t)
	first := sparsePDF(t, "first.pdf", 40*mib)
	second := sparsePDF(t, "second.pdf", 45*mib)

	h.machine.Handle(PickFiles{Paths: []string{first}})
	h.advance(300 * time.Millisecond)
	h.machine.Handle(PickFiles{Paths: []string{second}})

	h.advance(300 * time.Millisecond)
	assert.Equal(t, StateFileAdopted, h.machine.State(), "first timer was cancelled")

	h.advance(200 * time.Millisecond)
	assert.Equal(t, StateConfiguring, h.machine.State())
	assert.Equal(t, "second.pdf", h.machine.View().Selection.Name)
}

// TestMachine_UploadStatusError 测试上传返回 500 时提示状态码并重置
func TestMachine_UploadStatusError(t *testing.T) {
	h := newHarness(t)
	h.submitter.status = 500
	h.configure(sparsePDF(t, "grande.pdf", 50*mib))
	h.machine.Handle(SetField{Name: form.FieldStartNumber, Value: "12"})

	h.machine.Handle(Submit{})
	v := h.machine.View()
	assert.Equal(t, StateUploading, v.State)
	assert.True(t, v.Progress.Visible)
	assert.Equal(t, 0, v.Progress.Percent)
	assert.False(t, v.SubmitEnabled)

	h.pump()

	v = h.machine.View()
	require.NotNil(t, v.Notice)
	assert.Contains(t, v.Notice.Text, "500")
	assert.Contains(t, v.Notice.Text, "smaller file")
	assert.False(t, v.Progress.Visible)
	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.Selection)
	assert.Equal(t, "#0001", v.FolioLabel, "reload restores the field defaults")
}

// TestMachine_UploadSuccess 测试上传成功保存结果并回到初始状态
func TestMachine_UploadSuccess(t *testing.T) {
	h := newHarness(t)
	h.fetcher.On("Preview", "acta.pdf", mock.Anything).Return(pngPayload(t), nil)
	h.configure(sparsePDF(t, "acta.pdf", mib))
	h.advance(750 * time.Millisecond)
	require.Equal(t, 1, h.store.Live())

	h.machine.Handle(SetField{Name: form.FieldStartNumber, Value: "30"})
	h.machine.Handle(Submit{})
	h.pump()

	assert.Equal(t, "30", h.submitter.fields.Get(form.FieldStartNumber))

	saved := filepath.Join(h.outDir, "Foliado_acta.pdf")
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-foliated", string(data))

	v := h.machine.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.Notice)
	assert.Equal(t, StatusSuccess, v.Status.Kind)
	assert.Contains(t, v.Status.Text, saved)
	assert.Equal(t, saved, v.ResultPath)
	assert.Equal(t, 0, h.store.Live(), "reload releases the preview image")
	assert.Equal(t, 0, h.clock.Pending())
}

// TestMachine_UploadNetworkError 测试网络错误不重置会话
func TestMachine_UploadNetworkError(t *testing.T) {
	h := newHarness(t)
	h.submitter.netErr = true
	h.configure(sparsePDF(t, "grande.pdf", 50*mib))

	h.machine.Handle(Submit{})
	h.pump()

	v := h.machine.View()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeNetworkError, v.Notice.Text)
	assert.False(t, v.Progress.Visible)
	assert.Equal(t, StateConfiguring, v.State)
	require.NotNil(t, v.Selection)
	assert.Equal(t, "grande.pdf", v.Selection.Name)

	// the user can retry after dismissing
	h.submitter.netErr = false
	h.machine.Handle(DismissNotice{})
	h.machine.Handle(Submit{})
	h.pump()
	assert.Equal(t, 2, h.submitter.calls)
	assert.Equal(t, StateIdle, h.machine.State())
}

// TestMachine_SubmitIgnoredWhileUploading 测试上传中再次提交被忽略
func TestMachine_SubmitIgnoredWhileUploading(t *testing.T) {
	h := newHarness(t)
	h.configure(sparsePDF(t, "grande.pdf", 50*mib))

	h.machine.Handle(Submit{})
	h.machine.Handle(Submit{})
	h.machine.Handle(PickFiles{Paths: []string{sparsePDF(t, "other.pdf", mib)}})
	h.machine.Handle(Reload{})

	assert.Equal(t, StateUploading, h.machine.State())
	assert.Len(t, h.dispatch.jobs, 1)
}

func TestMachine_Reload(t *testing.T) {
	h := newHarness(t)
	h.configure(sparsePDF(t, "grande.pdf", 50*mib))
	h.machine.Handle(SetField{Name: form.FieldStartNumber, Value: "4"})
	require.Equal(t, "#0004", h.machine.View().FolioLabel)

	h.machine.Handle(Reload{})

	v := h.machine.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, "#0001", v.FolioLabel)
	assert.Nil(t, v.Selection)
}

func TestMachine_AdoptionFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.machine.Handle(DropFiles{Text: "/nonexistent/acta.pdf"})

	v := h.machine.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, StatusError, v.Status.Kind)
	assert.Contains(t, v.Status.Text, "Could not open the file")
}

func TestMachine_UnknownMessage(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.machine.Handle("tick"))
}
