package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/javanstorm/krunvm/internal/config"
)

// portPairsValue collects repeated --port host:guest flags.
type portPairsValue struct {
	pairs *[]config.PortPair
}

var _ pflag.SliceValue = portPairsValue{}

func newPortPairsValue(p *[]config.PortPair) portPairsValue {
	return portPairsValue{pairs: p}
}

func (v portPairsValue) Set(s string) error {
	pair, err := config.ParsePortPair(s)
	if err != nil {
		return err
	}
	*v.pairs = append(*v.pairs, pair)
	return nil
}

func (v portPairsValue) Type() string { return "host_port:guest_port" }

func (v portPairsValue) String() string {
	return "[" + strings.Join(v.GetSlice(), ",") + "]"
}

func (v portPairsValue) Append(s string) error { return v.Set(s) }

func (v portPairsValue) Replace(values []string) error {
	*v.pairs = nil
	for _, s := range values {
		if err := v.Set(s); err != nil {
			return err
		}
	}
	return nil
}

func (v portPairsValue) GetSlice() []string {
	out := make([]string, 0, len(*v.pairs))
	for _, p := range *v.pairs {
		out = append(out, p.String())
	}
	return out
}

// pathPairsValue collects repeated --volume host:guest flags.
type pathPairsValue struct {
	pairs *[]config.PathPair
}

var _ pflag.SliceValue = pathPairsValue{}

func newPathPairsValue(p *[]config.PathPair) pathPairsValue {
	return pathPairsValue{pairs: p}
}

func (v pathPairsValue) Set(s string) error {
	pair, err := config.ParsePathPair(s)
	if err != nil {
		return err
	}
	*v.pairs = append(*v.pairs, pair)
	return nil
}

func (v pathPairsValue) Type() string { return "host_path:guest_path" }

func (v pathPairsValue) String() string {
	return "[" + strings.Join(v.GetSlice(), ",") + "]"
}

func (v pathPairsValue) Append(s string) error { return v.Set(s) }

func (v pathPairsValue) Replace(values []string) error {
	*v.pairs = nil
	for _, s := range values {
		if err := v.Set(s); err != nil {
			return err
		}
	}
	return nil
}

func (v pathPairsValue) GetSlice() []string {
	out := make([]string, 0, len(*v.pairs))
	for _, p := range *v.pairs {
		out = append(out, p.String())
	}
	return out
}

// networkModeValue parses --net case-insensitively.
type networkModeValue struct {
	mode *config.NetworkMode
}

func newNetworkModeValue(m *config.NetworkMode) networkModeValue {
	return networkModeValue{mode: m}
}

func (v networkModeValue) Set(s string) error {
	mode, err := config.ParseNetworkMode(s)
	if err != nil {
		return err
	}
	*v.mode = mode
	return nil
}

func (v networkModeValue) Type() string { return "tsi|passt" }

func (v networkModeValue) String() string { return string(*v.mode) }
