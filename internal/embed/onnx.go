package embed

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv guards process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXConfig locates a BERT-style sentence transformer exported to ONNX
// together with its HuggingFace tokenizer.json.
type ONNXConfig struct {
	ModelPath     string
	TokenizerPath string
	LibraryPath   string // onnxruntime shared library; defaults to the model directory
	MaxSeqLen     int
	ModelID       string
	Threads       int
}

// ONNXEmbedder runs sentence-transformer inference in process.
// Session runs are serialized; tokenization happens outside the lock.
type ONNXEmbedder struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	tok        *tokenizer.Tokenizer
	inputNames []string
	outputName string
	dim        int64
	maxSeqLen  int
	modelID    string
}

// NewONNX loads the tokenizer and model and validates the model signature.
func NewONNX(cfg ONNXConfig) (*ONNXEmbedder, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(filepath.Dir(cfg.ModelPath))
	}
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = filepath.Join(filepath.Dir(cfg.ModelPath), sharedLibraryName())
	}

	tok, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	if err := initORT(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}

	inputNames, err := selectInputs(inputs)
	if err != nil {
		return nil, err
	}
	outputName, dim, err := selectOutput(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: create session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetIntraOpNumThreads(cfg.Threads); err != nil {
		return nil, fmt.Errorf("onnx: set threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("onnx: set threads: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &ONNXEmbedder{
		session:    session,
		tok:        tok,
		inputNames: inputNames,
		outputName: outputName,
		dim:        dim,
		maxSeqLen:  cfg.MaxSeqLen,
		modelID:    cfg.ModelID,
	}, nil
}

func sharedLibraryName() string {
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

// selectInputs requires input_ids and attention_mask; token_type_ids is
// passed only when the export declares it.
func selectInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	names := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		names[in.Name] = true
	}
	for _, required := range []string{"input_ids", "attention_mask"} {
		if !names[required] {
			return nil, fmt.Errorf("onnx: model missing required input %q", required)
		}
	}
	selected := []string{"input_ids", "attention_mask"}
	if names["token_type_ids"] {
		selected = append(selected, "token_type_ids")
	}
	return selected, nil
}

// selectOutput picks last_hidden_state (or the first output) and its hidden size.
func selectOutput(outputs []ort.InputOutputInfo) (string, int64, error) {
	if len(outputs) == 0 {
		return "", 0, fmt.Errorf("onnx: model has no outputs")
	}
	out := outputs[0]
	for _, o := range outputs {
		if o.Name == "last_hidden_state" {
			out = o
			break
		}
	}
	if len(out.Dimensions) != 3 {
		return "", 0, fmt.Errorf("onnx: expected 3D output %q, got %v", out.Name, out.Dimensions)
	}
	dim := out.Dimensions[2]
	if dim <= 0 {
		return "", 0, fmt.Errorf("onnx: output %q has dynamic hidden size", out.Name)
	}
	return out.Name, dim, nil
}

// ModelID returns the model identifier.
func (e *ONNXEmbedder) ModelID() string {
	return e.modelID
}

// Dimension returns the embedding width.
func (e *ONNXEmbedder) Dimension() int {
	return int(e.dim)
}

// Embed encodes one text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes texts in one inference call and returns unit-length vectors.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := e.tokenize(normalizeAll(texts))
	if err != nil {
		return nil, err
	}

	hidden, err := e.infer(batch)
	if err != nil {
		return nil, err
	}

	pooled := meanPool(hidden, batch.attentionMask, batch.size, batch.seqLen, e.dim)
	out := make([][]float32, batch.size)
	for i := int64(0); i < batch.size; i++ {
		vec := make([]float32, e.dim)
		copy(vec, pooled[i*e.dim:(i+1)*e.dim])
		l2Normalize(vec)
		out[i] = vec
	}
	return out, nil
}

type tokenBatch struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	size          int64
	seqLen        int64
}

// tokenize encodes texts and right-pads them to the longest sequence.
// Sequences over maxSeqLen are cut, keeping the final [SEP] token.
func (e *ONNXEmbedder) tokenize(texts []string) (*tokenBatch, error) {
	type row struct{ ids, mask, types []int }
	rows := make([]row, len(texts))
	longest := 0

	for i, text := range texts {
		enc, err := e.tok.EncodeSingle(text, true)
		if err != nil {
			return nil, fmt.Errorf("onnx: tokenize: %w", err)
		}
		r := row{ids: enc.Ids, mask: enc.AttentionMask, types: enc.TypeIds}
		if len(r.ids) > e.maxSeqLen {
			r.ids = truncateKeepLast(r.ids, e.maxSeqLen)
			r.mask = truncateKeepLast(r.mask, e.maxSeqLen)
			r.types = truncateKeepLast(r.types, e.maxSeqLen)
		}
		if len(r.ids) > longest {
			longest = len(r.ids)
		}
		rows[i] = r
	}
	if longest == 0 {
		longest = 1
	}

	b := &tokenBatch{
		inputIDs:      make([]int64, len(rows)*longest),
		attentionMask: make([]int64, len(rows)*longest),
		tokenTypeIDs:  make([]int64, len(rows)*longest),
		size:          int64(len(rows)),
		seqLen:        int64(longest),
	}
	for i, r := range rows {
		off := i * longest
		for j := range r.ids {
			b.inputIDs[off+j] = int64(r.ids[j])
			if j < len(r.mask) {
				b.attentionMask[off+j] = int64(r.mask[j])
			} else {
				b.attentionMask[off+j] = 1
			}
			if j < len(r.types) {
				b.tokenTypeIDs[off+j] = int64(r.types[j])
			}
		}
	}
	return b, nil
}

func truncateKeepLast(s []int, n int) []int {
	if len(s) <= n || n <= 0 {
		return s
	}
	out := make([]int, n)
	copy(out, s[:n-1])
	out[n-1] = s[len(s)-1]
	return out
}

func (e *ONNXEmbedder) infer(b *tokenBatch) ([]float32, error) {
	shape := ort.NewShape(b.size, b.seqLen)

	ids, err := ort.NewTensor(shape, b.inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: input_ids tensor: %w", err)
	}
	defer ids.Destroy()

	mask, err := ort.NewTensor(shape, b.attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: attention_mask tensor: %w", err)
	}
	defer mask.Destroy()

	inputs := []ort.Value{ids, mask}
	if len(e.inputNames) == 3 {
		types, err := ort.NewTensor(shape, b.tokenTypeIDs)
		if err != nil {
			return nil, fmt.Errorf("onnx: token_type_ids tensor: %w", err)
		}
		defer types.Destroy()
		inputs = append(inputs, types)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(b.size, b.seqLen, e.dim))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer out.Destroy()

	e.mu.Lock()
	err = e.session.Run(inputs, []ort.Value{out})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}

	src := out.GetData()
	hidden := make([]float32, len(src))
	copy(hidden, src)
	return hidden, nil
}

// Close releases the session.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}
