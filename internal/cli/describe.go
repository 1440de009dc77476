package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/javanstorm/krunvm/internal/config"
)

// printVM writes a VM definition the way list and changevm show it.
func printVM(w io.Writer, vm config.VMConfig) {
	fmt.Fprintln(w, vm.Name)
	fmt.Fprintf(w, " CPUs: %d\n", vm.CPUs)
	fmt.Fprintf(w, " RAM (MiB): %d\n", vm.MemoryMiB)
	fmt.Fprintf(w, " DNS server: %s\n", vm.DNS)
	fmt.Fprintf(w, " Buildah container: %s\n", vm.Container)
	fmt.Fprintf(w, " Workdir: %s\n", vm.Workdir)
	fmt.Fprintf(w, " Network mode: %s\n", vm.NetworkMode)
	fmt.Fprintf(w, " Mapped volumes: %s\n", formatPairs(vm.Volumes))
	fmt.Fprintf(w, " Mapped ports: %s\n", formatPairs(vm.Ports))
}

func formatPairs(m map[string]string) string {
	pairs := lo.MapToSlice(m, func(host, guest string) string {
		return host + ":" + guest
	})
	if len(pairs) == 0 {
		return "none"
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ", ")
}
