package predictor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
)

// TFLiteModel runs a TensorFlow Lite regression model whose single input
// tensor takes the EncodeFeatures vector and whose output holds one float.
type TFLiteModel struct {
	mu          sync.Mutex
	model       *tflite.Model
	interpreter *tflite.Interpreter
	info        ModelInfo
}

// LoadTFLite loads a .tflite model and checks its input width against the
// encoded feature vector. threads <= 0 uses the number of CPUs.
func LoadTFLite(path string, threads int) (*TFLiteModel, error) {
	start := time.Now()

	modelData, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read model file: %w", err)).
			Component("predictor").
			Category(errors.CategoryModelLoad).
			ModelContext(path, conf.ModelTypeTFLite).
			Timing("model-load", time.Since(start)).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.New(fmt.Errorf("cannot load TensorFlow Lite model")).
			Component("predictor").
			Category(errors.CategoryModelInit).
			ModelContext(path, conf.ModelTypeTFLite).
			FileContext(path, int64(len(modelData))).
			Timing("model-init", time.Since(start)).
			Build()
	}

	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, _ any) {
		GetLogger().Error("TFLite error", logger.String("message", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, errors.New(fmt.Errorf("cannot create interpreter")).
			Component("predictor").
			Category(errors.CategoryModelInit).
			ModelContext(path, conf.ModelTypeTFLite).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, errors.New(fmt.Errorf("tensor allocation failed: %v", status)).
			Component("predictor").
			Category(errors.CategoryModelInit).
			ModelContext(path, conf.ModelTypeTFLite).
			Build()
	}

	m := &TFLiteModel{
		model:       model,
		interpreter: interpreter,
		info: ModelInfo{
			Type:     conf.ModelTypeTFLite,
			Path:     path,
			Version:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Features: FeatureSchema,
			LoadedAt: time.Now(),
		},
	}

	input := interpreter.GetInputTensor(0)
	if input == nil || len(input.Float32s()) != EncodedWidth {
		width := 0
		if input != nil {
			width = len(input.Float32s())
		}
		_ = m.Close()
		return nil, schemaError(path, conf.ModelTypeTFLite,
			"input tensor takes %d float32 values, encoded readings have %d", width, EncodedWidth)
	}

	return m, nil
}

// Predict implements Predictor. Calls are serialised because the interpreter
// owns a single set of tensors.
func (m *TFLiteModel) Predict(ctx context.Context, r coldchain.Reading) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x, err := EncodeFeatures(&r)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interpreter == nil {
		return 0, errors.Newf("model is closed").
			Component("predictor").
			Category(errors.CategoryState).
			Build()
	}

	input := m.interpreter.GetInputTensor(0).Float32s()
	for i, v := range x {
		input[i] = float32(v)
	}

	if status := m.interpreter.Invoke(); status != tflite.OK {
		return 0, errors.Newf("tensor invoke failed: %v", status).
			Component("predictor").
			Category(errors.CategoryPrediction).
			ModelContext(m.info.Path, conf.ModelTypeTFLite).
			Build()
	}

	output := m.interpreter.GetOutputTensor(0)
	if output == nil || len(output.Float32s()) == 0 {
		return 0, errors.Newf("model produced no output").
			Component("predictor").
			Category(errors.CategoryPrediction).
			ModelContext(m.info.Path, conf.ModelTypeTFLite).
			Build()
	}

	return RoundTemp(float64(output.Float32s()[0])), nil
}

// Info implements Predictor.
func (m *TFLiteModel) Info() ModelInfo {
	return m.info
}

// Close releases the interpreter and model.
func (m *TFLiteModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interpreter != nil {
		m.interpreter.Delete()
		m.interpreter = nil
	}
	if m.model != nil {
		m.model.Delete()
		m.model = nil
	}
	return nil
}
