//go:build onnx
// +build onnx

package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/seqlab/postag/postag/embedding/tokenizer"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX-backed provider under the onnx build tag. Each vocabulary token is
// encoded with a WordPiece tokenizer and run through a transformer
// embedding model; the pooled output row becomes the token's vector.
type onnxProvider struct {
	dims        int
	modelPath   string
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	inputNames  []string
	outputNames []string
	tok         tokenizer.Tokenizer
}

func newONNXProvider(dims int, modelPath string) Provider {
	return &onnxProvider{dims: dims, modelPath: modelPath}
}

func (p *onnxProvider) Dimensions() int { return p.dims }

func (p *onnxProvider) ensureSession() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return nil
	}
	if p.modelPath == "" {
		return fmt.Errorf("onnx model path is required")
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}
	ins, outs, err := ort.GetInputOutputInfo(p.modelPath)
	if err != nil {
		return fmt.Errorf("get IO info: %w", err)
	}
	var idsName, maskName, tokTypeName string
	for _, ii := range ins {
		n := strings.ToLower(ii.Name)
		switch {
		case strings.Contains(n, "input_ids") || n == "ids":
			idsName = ii.Name
		case strings.Contains(n, "attention_mask") || n == "mask":
			maskName = ii.Name
		case strings.Contains(n, "token_type"):
			tokTypeName = ii.Name
		}
	}
	var inputNames []string
	for _, name := range []string{idsName, maskName, tokTypeName} {
		if name != "" {
			inputNames = append(inputNames, name)
		}
	}
	// Fallback: take the int64 tensor inputs in declared order
	if len(inputNames) == 0 {
		for _, ii := range ins {
			if ii.DataType == ort.TensorElementDataTypeInt64 {
				inputNames = append(inputNames, ii.Name)
				if len(inputNames) >= 2 {
					break
				}
			}
		}
	}
	if len(inputNames) == 0 {
		return fmt.Errorf("could not determine ONNX input names")
	}
	var outputNames []string
	for _, oi := range outs {
		if oi.DataType == ort.TensorElementDataTypeFloat {
			outputNames = append(outputNames, oi.Name)
			break
		}
	}
	if len(outputNames) == 0 {
		return fmt.Errorf("could not determine ONNX output name")
	}

	var opts *ort.SessionOptions
	if onnxEPPreference != "" && onnxEPPreference != "cpu" {
		if o, e := ort.NewSessionOptions(); e == nil {
			_ = o.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll)
			switch onnxEPPreference {
			case "cuda":
				if cu, e2 := ort.NewCUDAProviderOptions(); e2 == nil {
					_ = o.AppendExecutionProviderCUDA(cu)
					_ = cu.Destroy()
				}
			case "tensorrt":
				if trt, e2 := ort.NewTensorRTProviderOptions(); e2 == nil {
					_ = o.AppendExecutionProviderTensorRT(trt)
					_ = trt.Destroy()
				}
			case "coreml":
				_ = o.AppendExecutionProviderCoreMLV2(map[string]string{})
			case "dml":
				_ = o.AppendExecutionProviderDirectML(onnxDeviceID)
			}
			opts = o
		}
	}
	var s *ort.DynamicAdvancedSession
	if opts != nil {
		s, err = ort.NewDynamicAdvancedSession(p.modelPath, inputNames, outputNames, opts)
		_ = opts.Destroy()
	} else {
		s, err = ort.NewDynamicAdvancedSession(p.modelPath, inputNames, outputNames, nil)
	}
	if err != nil {
		return fmt.Errorf("create onnx session: %w", err)
	}
	p.session = s
	p.inputNames = inputNames
	p.outputNames = outputNames

	// Tokenizer: prefer sugarme WordPiece, fall back to the plain vocab reader
	vocabPath := filepath.Join(filepath.Dir(p.modelPath), "vocab.txt")
	if swp, werr := tokenizer.NewSugarWordPiece(vocabPath, 32); werr == nil {
		p.tok = swp
	} else if wp, werr2 := tokenizer.LoadWordPieceFromVocab(vocabPath, 32); werr2 == nil {
		p.tok = wp
	} else {
		return fmt.Errorf("failed to initialize tokenizer: %v", werr)
	}
	return nil
}

func (p *onnxProvider) Embed(ctx context.Context, tokens []string) ([][]float32, error) {
	if err := p.ensureSession(); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return [][]float32{}, nil
	}
	all := make([][]float32, 0, len(tokens))
	for i := 0; i < len(tokens); i += onnxBatchSize {
		end := min(i+onnxBatchSize, len(tokens))
		vecs, err := p.embedChunk(ctx, tokens[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vecs...)
	}
	return all, nil
}

func (p *onnxProvider) embedChunk(ctx context.Context, tokens []string) ([][]float32, error) {
	ids, masks, err := p.tok.Tokenize(tokens)
	if err != nil {
		return nil, err
	}
	batch := len(ids)
	if batch == 0 {
		return [][]float32{}, nil
	}
	seq := len(ids[0])
	flatIDs := make([]int64, batch*seq)
	flatMask := make([]int64, batch*seq)
	for i := 0; i < batch; i++ {
		copy(flatIDs[i*seq:(i+1)*seq], ids[i])
		if i < len(masks) {
			copy(flatMask[i*seq:(i+1)*seq], masks[i])
		}
	}
	shape := ort.NewShape(int64(batch), int64(seq))
	idsTensor, err := ort.NewTensor(shape, flatIDs)
	if err != nil {
		return nil, fmt.Errorf("ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, flatMask)
	if err != nil {
		return nil, fmt.Errorf("mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inVals := make([]ort.Value, len(p.inputNames))
	for i, name := range p.inputNames {
		ln := strings.ToLower(name)
		switch {
		case strings.Contains(ln, "input_ids") || ln == "ids":
			inVals[i] = idsTensor
		case strings.Contains(ln, "attention_mask") || ln == "mask":
			inVals[i] = maskTensor
		default:
			zero := make([]int64, batch*seq)
			zeroTensor, e := ort.NewTensor(shape, zero)
			if e != nil {
				return nil, fmt.Errorf("alloc zero tensor: %w", e)
			}
			defer zeroTensor.Destroy()
			inVals[i] = zeroTensor
		}
	}
	outs := make([]ort.Value, len(p.outputNames))
	if err := p.session.Run(inVals, outs); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	defer func() {
		for _, v := range outs {
			if v != nil {
				v.Destroy()
			}
		}
	}()
	t, ok := outs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type")
	}
	data := t.GetData()
	outShape := t.GetShape()
	if len(outShape) != 2 {
		return nil, fmt.Errorf("unexpected output rank %d", len(outShape))
	}
	rows, cols := int(outShape[0]), int(outShape[1])
	vecs := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		raw := make([]float32, cols)
		copy(raw, data[r*cols:(r+1)*cols])
		vecs[r] = AdjustToDims(raw, p.dims)
	}
	return vecs, nil
}
