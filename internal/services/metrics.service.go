package services

import (
	"context"
	"fmt"
	"log"
	"net/netip"
	"strings"
	"time"

	"wifiprober/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// Interface status values reported in system_info
const (
	WifiStatusDisconnected  = "disconnected"
	WifiStatusConnectedIP   = "connected with IP"
	WifiStatusConnectedNoIP = "connected without IP"
	WifiStatusDown          = "interface down"
	WifiStatusUnknown       = "unknown"
)

// ResourceSampler reads host resources through gopsutil. Every read is bound
// to the caller's context so a stuck sensor cannot stall the loop.
type ResourceSampler struct {
	diskPath string
}

func NewResourceSampler(diskPath string) *ResourceSampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &ResourceSampler{diskPath: diskPath}
}

// Sample returns CPU, RAM, disk and temperature. Fields that cannot be read
// stay at zero (temperature stays nil).
func (r *ResourceSampler) Sample(ctx context.Context) models.ResourceStatus {
	var status models.ResourceStatus

	if percentage, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percentage) > 0 {
		status.CPUPercent = percentage[0]
	} else if debugLogging {
		log.Printf("[RESOURCES] CPU read failed: %v", err)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.RAMPercent = vm.UsedPercent
	} else if debugLogging {
		log.Printf("[RESOURCES] Memory read failed: %v", err)
	}

	if usage, err := disk.UsageWithContext(ctx, r.diskPath); err == nil {
		status.DiskPercent = usage.UsedPercent
	} else if debugLogging {
		log.Printf("[RESOURCES] Disk read failed for %s: %v", r.diskPath, err)
	}

	status.TemperatureC = readTemperature(ctx)
	return status
}

// readTemperature prefers a CPU/SoC sensor and falls back to the first one.
func readTemperature(ctx context.Context) *float64 {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if len(temps) == 0 {
		if err != nil && debugLogging {
			log.Printf("[RESOURCES] Temperature read failed: %v", err)
		}
		return nil
	}

	chosen := temps[0].Temperature
	for _, t := range temps {
		key := strings.ToLower(t.SensorKey)
		if strings.Contains(key, "cpu") || strings.Contains(key, "soc") {
			chosen = t.Temperature
			break
		}
	}
	return &chosen
}

// SystemInfoCollector builds the system_info block of a probe sample.
type SystemInfoCollector struct {
	runner  CommandRunner
	iface   string
	timeout time.Duration
	now     func() time.Time
}

func NewSystemInfoCollector(runner CommandRunner, iface string) *SystemInfoCollector {
	return &SystemInfoCollector{runner: runner, iface: iface, timeout: 5 * time.Second, now: time.Now}
}

func (s *SystemInfoCollector) Collect(ctx context.Context) models.SystemInfo {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ip := InterfaceIPv4(ctx, s.iface)
	info := models.SystemInfo{
		Timestamp:           models.FormatTimestamp(s.now()),
		Uptime:              "unknown",
		MemoryUsage:         "unknown",
		WifiInterfaceStatus: s.wifiStatus(ctx, ip != ""),
	}
	if ip != "" {
		info.WifiIPAddress = &ip
	}

	if secs, err := host.UptimeWithContext(ctx); err == nil {
		info.Uptime = FormatUptime(time.Duration(secs) * time.Second)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		used := float64(vm.Total-vm.Available) / float64(vm.Total) * 100
		info.MemoryUsage = fmt.Sprintf("%.1f%%", roundTo(used, 1))
	}
	return info
}

func (s *SystemInfoCollector) wifiStatus(ctx context.Context, hasIP bool) string {
	out, err := s.runner.Run(ctx, s.timeout, "iwconfig", s.iface)
	if err != nil && out == "" {
		return WifiStatusUnknown
	}
	switch {
	case strings.Contains(out, "ESSID:off"):
		return WifiStatusDisconnected
	case strings.Contains(out, "ESSID:"):
		if hasIP {
			return WifiStatusConnectedIP
		}
		return WifiStatusConnectedNoIP
	default:
		return WifiStatusDown
	}
}

// InterfaceIPv4 returns the first IPv4 address of iface, or "" when it has none.
func InterfaceIPv4(ctx context.Context, iface string) string {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return ""
	}
	for _, i := range ifaces {
		if i.Name != iface {
			continue
		}
		for _, addr := range i.Addrs {
			prefix, err := netip.ParsePrefix(addr.Addr)
			if err != nil {
				continue
			}
			if prefix.Addr().Is4() {
				return prefix.Addr().String()
			}
		}
	}
	return ""
}

// FormatUptime renders d like "3 days, 4:05:06" or "4:05:06".
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	rem := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rem/3600, rem%3600/60, rem%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
