package load

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/smactrace/internal/appcontext"
	"github.com/agentstation/smactrace/internal/cmd/alerts"
	"github.com/agentstation/smactrace/internal/cmd/table"
	"github.com/agentstation/smactrace/pkg/constants"
	"github.com/agentstation/smactrace/pkg/errors"
	"github.com/agentstation/smactrace/pkg/netconfig"
	dtable "github.com/agentstation/smactrace/pkg/table"
)

// labeledNetwork is a decoded best configuration and the run it came from.
type labeledNetwork struct {
	Run               string  `json:"run" yaml:"run"`
	Response          float64 `json:"response" yaml:"response"`
	netconfig.Network `yaml:",inline"`
}

// decodeNetworks decodes every best record. Records that do not describe a
// network are reported on w and left out.
func decodeNetworks(bests *dtable.Table, app appcontext.Interface, w *alerts.Writer) (any, error) {
	if bests == nil {
		return nil, errors.NewConfigurationError("decode", "no best configurations")
	}

	var nets []labeledNetwork
	for _, rec := range bests.Records() {
		run := rec.Value(constants.ColProvenance).String()
		net, err := netconfig.Decode(rec)
		if err != nil {
			if werr := w.Write(alerts.NewWarning("cannot decode "+run).WithError(err)); werr != nil {
				return nil, werr
			}
			continue
		}
		response, _ := rec.Float(constants.ColResponse)
		nets = append(nets, labeledNetwork{Run: run, Response: response, Network: *net})
	}

	if !isTabular(app) {
		if nets == nil {
			nets = []labeledNetwork{}
		}
		return nets, nil
	}
	return networksToTableData(nets), nil
}

func networksToTableData(nets []labeledNetwork) table.Data {
	data := table.Data{
		Headers: []string{"Run", "Response", "Algorithm", "Layers", "Units", "Batch", "Learning Rate", "Solver", "Policy"},
		ColumnAlignment: []table.Align{
			table.AlignLeft, table.AlignRight, table.AlignLeft, table.AlignCenter, table.AlignLeft,
			table.AlignRight, table.AlignRight, table.AlignLeft, table.AlignLeft,
		},
	}
	for _, n := range nets {
		units := make([]string, len(n.Units))
		for i, u := range n.Units {
			units[i] = strconv.Itoa(u)
		}
		data.Rows = append(data.Rows, []string{
			n.Run,
			strconv.FormatFloat(n.Response, 'g', 6, 64),
			n.Algorithm,
			strconv.Itoa(n.NumLayers),
			strings.Join(units, ","),
			strconv.Itoa(n.BatchSize),
			fmt.Sprintf("%g", n.LearningRate),
			n.Solver,
			n.LRPolicy,
		})
	}
	return data
}
