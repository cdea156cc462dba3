package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:      0.0,
			tolerance: 1e-10,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25,
			tolerance: 1e-10,
		},
		{
			name:      "larger errors",
			yTrue:     mat.NewVecDense(3, []float64{10.0, 20.0, 30.0}),
			yPred:     mat.NewVecDense(3, []float64{12.0, 18.0, 33.0}),
			want:      17.0 / 3.0,
			tolerance: 1e-10,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MSE() = %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestEmptyInputKind(t *testing.T) {
	_, err := SSR(&mat.VecDense{}, &mat.VecDense{})
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
	if errors.Kind(err) != "empty_input" {
		t.Errorf("Kind() = %q", errors.Kind(err))
	}
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -0.5, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2.5, 0.0, 2, 8})

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if want := math.Sqrt(0.375); math.Abs(rmse-want) > 1e-10 {
		t.Errorf("RMSE() = %v, want %v", rmse, want)
	}

	mae, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}
	if math.Abs(mae-0.5) > 1e-10 {
		t.Errorf("MAE() = %v, want 0.5", mae)
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0, false},
		{"mean predictor", []float64{1, 2, 3}, []float64{2, 2, 2}, 0.0, false},
		{"reference values", []float64{3, -0.5, 2, 7}, []float64{2.5, 0.0, 2, 8}, 0.9486081370449679, false},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
			)
			if (err != nil) != tt.wantErr {
				t.Fatalf("R2Score() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestR2ScoreConstantTarget(t *testing.T) {
	var warned []error
	errors.SetZerologWarnFunc(func(w error) { warned = append(warned, w) })
	defer errors.SetZerologWarnFunc(nil)

	got, err := R2Score(mat.NewVecDense(3, []float64{4, 4, 4}), mat.NewVecDense(3, []float64{4, 4, 4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("R2Score() = %v, want NaN", got)
	}
	var w *errors.UndefinedMetricWarning
	if len(warned) != 1 || !errors.As(warned[0], &w) || w.Metric != "R2Score" {
		t.Errorf("expected one R2Score UndefinedMetricWarning, got %v", warned)
	}
}

func TestAdjustedR2(t *testing.T) {
	got, err := AdjustedR2(0.5, 11, 3)
	if err != nil {
		t.Fatalf("AdjustedR2() error = %v", err)
	}
	// 1 - 0.5 * 10/8
	if math.Abs(got-0.375) > 1e-12 {
		t.Errorf("AdjustedR2() = %v, want 0.375", got)
	}

	var warned []error
	errors.SetZerologWarnFunc(func(w error) { warned = append(warned, w) })
	defer errors.SetZerologWarnFunc(nil)

	got, err = AdjustedR2(1, 2, 2)
	if err != nil {
		t.Fatalf("AdjustedR2() error = %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("AdjustedR2() = %v, want NaN without residual degrees of freedom", got)
	}
	if len(warned) != 1 {
		t.Errorf("expected one UndefinedMetricWarning, got %d", len(warned))
	}

	if _, err := AdjustedR2(0.5, 10, 0); err == nil {
		t.Error("expected error for k = 0")
	}
}

func TestAIC(t *testing.T) {
	got, err := AIC(10, 10, 2)
	if err != nil {
		t.Fatalf("AIC() error = %v", err)
	}
	// 10·ln(1) + 4
	if math.Abs(got-4) > 1e-12 {
		t.Errorf("AIC() = %v, want 4", got)
	}

	got, err = AIC(0, 5, 2)
	if err != nil {
		t.Fatalf("AIC() error = %v", err)
	}
	if !math.IsInf(got, -1) {
		t.Errorf("AIC() of a perfect fit = %v, want -Inf", got)
	}

	if _, err := AIC(1, 0, 1); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}
