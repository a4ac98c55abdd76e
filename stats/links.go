package stats

import (
	"math"

	"controlplane/topology"
)

// LinkStats is the derived performance row of one undirected link, reported
// once in its canonical direction (lower switch id first). Throughput and
// loss describe the Src→Dst direction.
type LinkStats struct {
	Src            int     `json:"src"`
	Dst            int     `json:"dst"`
	SrcPort        int     `json:"src_port"`
	DstPort        int     `json:"dst_port"`
	BandwidthMbps  float64 `json:"bw_mbps"`
	ThroughputMbps float64 `json:"throughput_mbps"`
	Utilization    float64 `json:"utilization"`
	PacketLossRate float64 `json:"packet_loss_rate"`
	RxPackets      uint64  `json:"rx_packets_u"`
	TxPackets      uint64  `json:"tx_packets_u"`
	RxDropped      uint64  `json:"rx_dropped_u"`
	TxDropped      uint64  `json:"tx_dropped_u"`
}

// DeriveLinkStats recomputes the per-link table from the two most recent
// samples of both endpoints. A link whose endpoints have no sample yet is
// skipped; one without a previous sample pair reports zero rates (first
// poll after startup).
func DeriveLinkStats(snap *topology.Snapshot, samples *SampleStore) []LinkStats {
	edges := snap.Edges()
	out := make([]LinkStats, 0, len(edges))

	for _, e := range edges {
		srcPort, okU := snap.EgressPort(e.U, e.V)
		dstPort, okV := snap.EgressPort(e.V, e.U)
		if !okU || !okV {
			continue
		}

		curU, prevU, hasCurU, hasPrevU := samples.PortSamples(e.U, srcPort)
		curV, prevV, hasCurV, hasPrevV := samples.PortSamples(e.V, dstPort)
		if !hasCurU || !hasCurV {
			continue
		}

		row := LinkStats{
			Src:           e.U,
			Dst:           e.V,
			SrcPort:       srcPort,
			DstPort:       dstPort,
			BandwidthMbps: e.Bandwidth,
			RxPackets:     curU.RxPackets,
			TxPackets:     curU.TxPackets,
			RxDropped:     curU.RxDropped,
			TxDropped:     curU.TxDropped,
		}

		elapsed := 0.0
		if hasPrevU {
			elapsed = curU.Timestamp.Sub(prevU.Timestamp).Seconds()
		}
		if hasPrevU && hasPrevV && elapsed > 0 {
			txBytes := float64(curU.TxBytes - prevU.TxBytes)
			throughput := txBytes * 8 / (elapsed * 1e6)
			row.ThroughputMbps = round2(throughput)
			if e.Bandwidth > 0 {
				row.Utilization = round2(throughput / e.Bandwidth * 100)
			}

			txPkts := int64(curU.TxPackets - prevU.TxPackets)
			rxPkts := int64(curV.RxPackets - prevV.RxPackets)
			if txPkts > 0 {
				lost := txPkts - rxPkts
				if lost < 0 {
					lost = 0
				}
				row.PacketLossRate = round2(float64(lost) / float64(txPkts) * 100)
			}
		}

		out = append(out, row)
	}
	return out
}

// SwitchStats aggregates one switch's counters for the facade.
type SwitchStats struct {
	Dpid           int    `json:"dpid"`
	FlowCount      int    `json:"flow_count"`
	TotalRxPackets uint64 `json:"total_rx_packets"`
	TotalTxPackets uint64 `json:"total_tx_packets"`
	TotalRxBytes   uint64 `json:"total_rx_bytes"`
	TotalTxBytes   uint64 `json:"total_tx_bytes"`
	PortCount      int    `json:"port_count"`
}

// DeriveSwitchStats sums the current port samples of every switch in the
// snapshot, in ascending id order.
func DeriveSwitchStats(snap *topology.Snapshot, samples *SampleStore) []SwitchStats {
	nodes := snap.Nodes()
	out := make([]SwitchStats, 0, len(nodes))
	for _, id := range nodes {
		ports := samples.CurrentPorts(id)
		row := SwitchStats{
			Dpid:      id,
			FlowCount: samples.FlowCount(id),
			PortCount: len(ports),
		}
		for _, p := range ports {
			row.TotalRxPackets += p.RxPackets
			row.TotalTxPackets += p.TxPackets
			row.TotalRxBytes += p.RxBytes
			row.TotalTxBytes += p.TxBytes
		}
		out = append(out, row)
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
