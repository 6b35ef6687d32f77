// Package queries wires the predefined retail workload queries (Q1-Q7) to
// the operators with literal parameters. It holds no cost arithmetic of its
// own: selectivities come from catalog statistics, costs from the operators.
package queries

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/shardcost/internal/catalog"
	"github.com/kailas-cloud/shardcost/internal/domain"
	"github.com/kailas-cloud/shardcost/internal/domain/collection"
	"github.com/kailas-cloud/shardcost/internal/usecase/aggregate"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/join"
)

// Strategy maps a collection name to the sharding key applied for a run.
// Collections absent from the map are evaluated unsharded.
type Strategy map[string]string

// Kind tells which operator a template resolves to.
type Kind string

// Template kinds.
const (
	KindFilter    Kind = "filter"
	KindJoin      Kind = "join"
	KindAggregate Kind = "aggregate"
)

// Outcome is the result of one template run.
type Outcome struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
	Kind        Kind   `json:"kind"`

	// Exactly one of the following is set, matching Kind.
	Filter    *filter.Result    `json:"filter,omitempty"`
	Join      *join.Result      `json:"join,omitempty"`
	Aggregate *aggregate.Result `json:"aggregate,omitempty"`
}

// Cost returns the total cost of whichever operator ran.
func (o Outcome) Cost() domain.QueryCost {
	switch o.Kind {
	case KindFilter:
		return o.Filter.Cost
	case KindJoin:
		return o.Join.Cost
	default:
		return o.Aggregate.Cost
	}
}

// Runner executes the predefined templates against a catalog.
type Runner struct {
	cat        *catalog.Catalog
	filters    *filter.Operator
	joins      *join.Operator
	aggregates *aggregate.Operator
}

// New creates a template runner.
func New(cat *catalog.Catalog, filters *filter.Operator, joins *join.Operator, aggregates *aggregate.Operator) *Runner {
	return &Runner{cat: cat, filters: filters, joins: joins, aggregates: aggregates}
}

type template struct {
	description string
	sql         string
	run         func(*Runner, Strategy) (Outcome, error)
}

var templates = map[string]template{
	"q1": {
		description: "Stock of a given product in a given warehouse",
		sql:         "SELECT S.quantity, S.location FROM Stock S WHERE S.IDP = $IDP AND S.IDW = $IDW",
		run:         (*Runner).q1,
	},
	"q2": {
		description: "Names and prices of the products of a given brand",
		sql:         "SELECT P.name, P.price FROM Product P WHERE P.brand = $brand",
		run:         (*Runner).q2,
	},
	"q3": {
		description: "Products and quantities ordered at a given date",
		sql:         "SELECT O.IDP, O.quantity FROM OrderLine O WHERE O.date = $date",
		run:         (*Runner).q3,
	},
	"q4": {
		description: "Stock of a given warehouse with product names",
		sql:         "SELECT P.name, S.quantity FROM Stock S JOIN Product P ON S.IDP = P.IDP WHERE S.IDW = $IDW",
		run:         (*Runner).q4,
	},
	"q5": {
		description: "Warehouse distribution of a brand's products",
		sql:         "SELECT P.name, P.price, S.IDW, S.quantity FROM Product P JOIN Stock S ON P.IDP = S.IDP WHERE P.brand = $brand",
		run:         (*Runner).q5,
	},
	"q6": {
		description: "The 100 most ordered products with name and price",
		sql: "SELECT P.name, P.price, OL.NB FROM Product P JOIN (SELECT O.IDP, SUM(O.quantity) AS NB " +
			"FROM OrderLine O GROUP BY O.IDP) OL ON P.IDP = OL.IDP ORDER BY OL.NB DESC LIMIT 100",
		run: (*Runner).q6,
	},
	"q7": {
		description: "The product most ordered by a given customer",
		sql: "SELECT P.name, P.price, OL.NB FROM Product P JOIN (SELECT O.IDP, SUM(O.quantity) AS NB " +
			"FROM OrderLine O WHERE O.IDC = $IDC GROUP BY O.IDP) OL ON P.IDP = OL.IDP ORDER BY OL.NB DESC LIMIT 1",
		run: (*Runner).q7,
	},
}

// Names returns the template names in order.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a template's description and SQL without running it.
func Describe(name string) (description, sql string, err error) {
	t, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("query template %q: %w", name, domain.ErrNotFound)
	}
	return t.description, t.sql, nil
}

// Run executes a template under the given sharding strategy.
func (r *Runner) Run(name string, strategy Strategy) (Outcome, error) {
	t, ok := templates[name]
	if !ok {
		return Outcome{}, fmt.Errorf("query template %q: %w", name, domain.ErrNotFound)
	}
	out, err := t.run(r, strategy)
	if err != nil {
		return Outcome{}, fmt.Errorf("run %s: %w", name, err)
	}
	out.Name = name
	out.Description = t.description
	out.SQL = t.sql
	return out, nil
}

// resolve loads a catalog entry and applies the strategy's sharding key.
func (r *Runner) resolve(name string, strategy Strategy) (catalog.Entry, collection.Collection, error) {
	entry, err := r.cat.Collection(name)
	if err != nil {
		return catalog.Entry{}, collection.Collection{}, err
	}
	col := entry.Base
	if key, ok := strategy[name]; ok {
		col, err = entry.Sharded(key)
		if err != nil {
			return catalog.Entry{}, collection.Collection{}, err
		}
	}
	return entry, col, nil
}

// statRatio is a selectivity from two workload statistics.
func (r *Runner) statRatio(numKey, denKey string) (float64, error) {
	num, err := r.cat.Statistic(numKey)
	if err != nil {
		return 0, err
	}
	den, err := r.cat.Statistic(denKey)
	if err != nil {
		return 0, err
	}
	if den <= 0 {
		return 0, fmt.Errorf("statistic %q must be positive, got %d: %w", denKey, den, domain.ErrInvalidInput)
	}
	return float64(num) / float64(den), nil
}

// oneOver is the selectivity of an equality predicate on a key with the
// given cardinality statistic.
func (r *Runner) oneOver(denKey string) (float64, error) {
	den, err := r.cat.Statistic(denKey)
	if err != nil {
		return 0, err
	}
	if den <= 0 {
		return 0, fmt.Errorf("statistic %q must be positive, got %d: %w", denKey, den, domain.ErrInvalidInput)
	}
	return 1 / float64(den), nil
}

func (r *Runner) q1(strategy Strategy) (Outcome, error) {
	entry, stock, err := r.resolve("Stock", strategy)
	if err != nil {
		return Outcome{}, err
	}

	// One (product, warehouse) pair matches exactly one stock entry.
	selectivity := 0.0
	if stock.DocumentCount() > 0 {
		selectivity = 1 / float64(stock.DocumentCount())
	}

	res, err := r.filters.Estimate(filter.Request{
		Collection:      stock,
		FilterKeys:      []string{"IDP", "IDW"},
		OutputKeys:      []string{"quantity", "location"},
		Selectivity:     selectivity,
		UseIndex:        true,
		ArrayItemCounts: entry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindFilter, Filter: &res}, nil
}

func (r *Runner) q2(strategy Strategy) (Outcome, error) {
	entry, product, err := r.resolve("Product", strategy)
	if err != nil {
		return Outcome{}, err
	}

	selectivity, err := r.statRatio("products_per_brand", "num_products")
	if err != nil {
		return Outcome{}, err
	}

	res, err := r.filters.Estimate(filter.Request{
		Collection:      product,
		FilterKeys:      []string{"brand"},
		OutputKeys:      []string{"name", "price"},
		Selectivity:     selectivity,
		UseIndex:        true,
		ArrayItemCounts: entry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindFilter, Filter: &res}, nil
}

func (r *Runner) q3(strategy Strategy) (Outcome, error) {
	entry, orderLine, err := r.resolve("OrderLine", strategy)
	if err != nil {
		return Outcome{}, err
	}

	// Order lines spread evenly over the order dates.
	selectivity, err := r.oneOver("num_dates")
	if err != nil {
		return Outcome{}, err
	}

	res, err := r.filters.Estimate(filter.Request{
		Collection:      orderLine,
		FilterKeys:      []string{"date"},
		OutputKeys:      []string{"IDP", "quantity"},
		Selectivity:     selectivity,
		ArrayItemCounts: entry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindFilter, Filter: &res}, nil
}

func (r *Runner) q4(strategy Strategy) (Outcome, error) {
	stockEntry, stock, err := r.resolve("Stock", strategy)
	if err != nil {
		return Outcome{}, err
	}
	_, product, err := r.resolve("Product", strategy)
	if err != nil {
		return Outcome{}, err
	}

	leftSel, err := r.oneOver("num_warehouses")
	if err != nil {
		return Outcome{}, err
	}
	rightSel, err := r.oneOver("num_products")
	if err != nil {
		return Outcome{}, err
	}

	res, err := r.joins.Estimate(join.Request{
		Left: join.Side{
			Collection:  stock,
			FilterKeys:  []string{"IDW"},
			Selectivity: leftSel,
			OutputKeys:  []string{"quantity"},
		},
		Right: join.Side{
			Collection:  product,
			Selectivity: rightSel,
			OutputKeys:  []string{"name"},
		},
		JoinKey:         "IDP",
		ArrayItemCounts: stockEntry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindJoin, Join: &res}, nil
}

func (r *Runner) q5(strategy Strategy) (Outcome, error) {
	productEntry, product, err := r.resolve("Product", strategy)
	if err != nil {
		return Outcome{}, err
	}
	_, stock, err := r.resolve("Stock", strategy)
	if err != nil {
		return Outcome{}, err
	}

	leftSel, err := r.statRatio("products_per_brand", "num_products")
	if err != nil {
		return Outcome{}, err
	}
	rightSel, err := r.oneOver("num_products")
	if err != nil {
		return Outcome{}, err
	}

	res, err := r.joins.Estimate(join.Request{
		Left: join.Side{
			Collection:  product,
			FilterKeys:  []string{"brand"},
			Selectivity: leftSel,
			OutputKeys:  []string{"name", "price"},
		},
		Right: join.Side{
			Collection:  stock,
			Selectivity: rightSel,
			OutputKeys:  []string{"IDW", "quantity"},
		},
		JoinKey:         "IDP",
		ArrayItemCounts: productEntry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindJoin, Join: &res}, nil
}

func (r *Runner) q6(strategy Strategy) (Outcome, error) {
	return r.topOrdered(strategy, nil, 0, 100)
}

func (r *Runner) q7(strategy Strategy) (Outcome, error) {
	// Restricting to one customer keeps only that customer's product lines.
	sel, err := r.statRatio("products_per_customer", "num_order_lines")
	if err != nil {
		return Outcome{}, err
	}
	return r.topOrdered(strategy, []string{"IDC"}, sel, 1)
}

// topOrdered is the shared shape of Q6/Q7: order lines aggregated by product
// and joined with the product collection, keeping the top rows.
func (r *Runner) topOrdered(strategy Strategy, orderFilterKeys []string, orderSelectivity float64, limit int64) (Outcome, error) {
	productEntry, product, err := r.resolve("Product", strategy)
	if err != nil {
		return Outcome{}, err
	}
	_, orderLine, err := r.resolve("OrderLine", strategy)
	if err != nil {
		return Outcome{}, err
	}

	leftSel, err := r.oneOver("num_products")
	if err != nil {
		return Outcome{}, err
	}
	if orderFilterKeys == nil {
		// One aggregated row per product.
		if orderSelectivity, err = r.statRatio("num_products", "num_order_lines"); err != nil {
			return Outcome{}, err
		}
	}

	res, err := r.aggregates.Estimate(aggregate.Request{
		Left: aggregate.Side{
			Collection:  product,
			Selectivity: leftSel,
			OutputKeys:  []string{"name", "price"},
		},
		Right: &aggregate.Side{
			Collection:  orderLine,
			FilterKeys:  orderFilterKeys,
			Selectivity: orderSelectivity,
			OutputKeys:  []string{"IDP", "quantity"},
			GroupByKey:  "IDP",
		},
		JoinKey:         "IDP",
		Limit:           limit,
		ArrayItemCounts: productEntry.ArrayItemCounts,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindAggregate, Aggregate: &res}, nil
}
