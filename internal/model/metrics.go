package model

import "fmt"

// Confusion is the 2x2 confusion matrix for the leaver label, positive
// class = 1.
type Confusion struct {
	TP, FP, TN, FN int
}

func Confuse(truth, pred []int) (*Confusion, error) {
	if len(truth) != len(pred) {
		return nil, fmt.Errorf("truth has %d rows, predictions %d", len(truth), len(pred))
	}

	cm := &Confusion{}
	for ind := range truth {
		switch {
		case truth[ind] == 1 && pred[ind] == 1:
			cm.TP++
		case truth[ind] == 0 && pred[ind] == 1:
			cm.FP++
		case truth[ind] == 0 && pred[ind] == 0:
			cm.TN++
		default:
			cm.FN++
		}
	}

	return cm, nil
}

func (cm *Confusion) Accuracy() float64 {
	n := cm.TP + cm.FP + cm.TN + cm.FN
	if n == 0 {
		return 0.0
	}

	return float64(cm.TP+cm.TN) / float64(n)
}

func (cm *Confusion) Precision() float64 {
	if cm.TP+cm.FP == 0 {
		return 0.0
	}

	return float64(cm.TP) / float64(cm.TP+cm.FP)
}

func (cm *Confusion) Recall() float64 {
	if cm.TP+cm.FN == 0 {
		return 0.0
	}

	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

func (cm *Confusion) F1() float64 {
	p, r := cm.Precision(), cm.Recall()
	if p+r == 0.0 {
		return 0.0
	}

	return 2.0 * p * r / (p + r)
}

func (cm *Confusion) String() string {
	return fmt.Sprintf("            pred 0  pred 1\n  truth 0  %7d %7d\n  truth 1  %7d %7d",
		cm.TN, cm.FP, cm.FN, cm.TP)
}

// Accuracy without the full matrix, for the importance loop.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0.0
	}

	hits := 0
	for ind := range truth {
		if truth[ind] == pred[ind] {
			hits++
		}
	}

	return float64(hits) / float64(len(truth))
}
