package trigger

import (
	"sort"

	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/variable"
)

// Processor runs a batch of same-order variables for one stage: a
// BatchProcessor[Job]-shaped signature minus the context/error plumbing a
// single-threaded engine doesn't need.
type Processor func(batch []variable.Variable)

// Pool groups a simultaneous event group's variables by polynomial order,
// so each order's stage work (and the pooled model query feeding it) runs
// as one batch rather than one round trip per variable.
type Pool struct {
	byOrder map[int][]variable.Variable
	orders  []int
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{byOrder: make(map[int][]variable.Variable)}
}

// Add enrolls v, grouped under its own Order().
func (p *Pool) Add(v variable.Variable) {
	o := v.Order()
	if _, ok := p.byOrder[o]; !ok {
		p.orders = append(p.orders, o)
	}
	p.byOrder[o] = append(p.byOrder[o], v)
}

// Len returns the total number of enrolled variables across all orders.
func (p *Pool) Len() int {
	n := 0
	for _, vs := range p.byOrder {
		n += len(vs)
	}
	return n
}

// Orders returns the distinct orders present, ascending.
func (p *Pool) Orders() []int {
	out := make([]int, len(p.orders))
	copy(out, p.orders)
	sort.Ints(out)
	return out
}

// Batch returns the variables enrolled under order o.
func (p *Pool) Batch(o int) []variable.Variable { return p.byOrder[o] }

// Run dispatches every order's batch to proc, ascending by order: lower
// orders never depend on a higher order's stage work within the same
// event group, but running low-to-high keeps dispatch deterministic.
func (p *Pool) Run(proc Processor) {
	for _, o := range p.Orders() {
		proc(p.byOrder[o])
	}
}

// PooledGetReal reads every variable's own value ref from m in a single
// round trip via model.Adapter.GetReal, the batching win this package
// exists to provide.
func PooledGetReal(m model.Adapter, vars []variable.Variable) map[variable.Variable]float64 {
	refs := make([]model.Ref, len(vars))
	for i, v := range vars {
		refs[i] = v.ValueRef()
	}
	out := make([]float64, len(vars))
	m.GetReal(refs, out)

	result := make(map[variable.Variable]float64, len(vars))
	for i, v := range vars {
		result[v] = out[i]
	}
	return result
}

// pooledStager is satisfied by every concrete trajectory Variable (they all
// embed variable.Base, which implements it): the two calls PooledStage1
// needs to batch Stage 1 across a whole simultaneous-event group instead of
// querying the model once per variable.
type pooledStager interface {
	DerivativeRef() (model.Ref, bool)
	SetX1(float64)
	NDParams() (dtND, modelStartTime float64)
}

// PooledStage1 fills x1 for every variable in vars via at most three
// model.GetReal calls total, instead of one model round trip per variable:
// one call for the subset whose model exposes a direct derivative channel,
// up to two more for the subset that falls back to numerical
// differentiation of its own value (their shared dtND/model-start-time,
// read off the first ND variable, make one batched probe per time offset
// valid for the whole subset -- every Variable in a run shares the same
// *Params). Variables with Order() < 1, or that don't implement
// pooledStager, are left untouched. InputVar satisfies pooledStager through
// the embedded Base, but the solver never passes it here: it computes its
// own derivatives from its closed-form function.
//
// This covers "set every observee value, issue one pooled getReals,
// distribute results back" for Stage 1 specifically; Stage 2 and Stage 3
// still query per variable, since each one needs its own predicted
// perturbation published before the shared probe and batching that adds
// much more bookkeeping for a stage that only order>=2/3 triggers reach.
func PooledStage1(m model.Adapter, t float64, vars []variable.Variable) {
	var direct []variable.Variable
	var directRefs []model.Ref
	var nd []variable.Variable

	for _, v := range vars {
		if v.Order() < 1 {
			continue
		}
		ps, ok := v.(pooledStager)
		if !ok {
			continue
		}
		ref, isDirect := ps.DerivativeRef()
		if isDirect {
			direct = append(direct, v)
			directRefs = append(directRefs, ref)
		} else {
			nd = append(nd, v)
		}
	}

	if len(direct) > 0 {
		m.SetTime(t)
		out := make([]float64, len(direct))
		m.GetReal(directRefs, out)
		for i, v := range direct {
			v.(pooledStager).SetX1(out[i])
		}
	}

	if len(nd) == 0 {
		return
	}

	dtND, modelStart := nd[0].(pooledStager).NDParams()
	lo := t - dtND
	oneSided := lo < modelStart

	refs := make([]model.Ref, len(nd))
	for i, v := range nd {
		ref, _ := v.(pooledStager).DerivativeRef()
		refs[i] = ref
	}

	var vAt, vLo []float64
	if oneSided {
		vAt = make([]float64, len(nd))
		m.SetTime(t)
		m.GetReal(refs, vAt)
	} else {
		m.SetTime(lo)
		vLo = make([]float64, len(nd))
		m.GetReal(refs, vLo)
	}

	m.SetTime(t + dtND)
	vHi := make([]float64, len(nd))
	m.GetReal(refs, vHi)
	m.SetTime(t)

	for i, v := range nd {
		var x1 float64
		if oneSided {
			x1 = (vHi[i] - vAt[i]) / dtND
		} else {
			x1 = (vHi[i] - vLo[i]) / (t + dtND - lo)
		}
		v.(pooledStager).SetX1(x1)
	}
}
