package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Credentials are substituted into CommandLink arguments as {ssid},
// {passphrase} and {interface}.
type Credentials struct {
	SSID       string
	Passphrase string
	Interface  string
}

func (c Credentials) expand(arg string) string {
	return strings.NewReplacer(
		"{ssid}", c.SSID,
		"{passphrase}", c.Passphrase,
		"{interface}", c.Interface,
	).Replace(arg)
}

// CommandLink brings the link up with external commands, for example
//
//	connect: nmcli device wifi connect {ssid} password {passphrase} ifname {interface}
//	status:  nmcli -t -f GENERAL.STATE device show {interface}
//
// Commands are split into arguments like a shell would, then each argument
// is expanded separately, so credentials containing spaces stay a single
// argument. No shell is involved.
type CommandLink struct {
	connect []string
	status  []string
	expect  string
	creds   Credentials
}

// NewCommandLink parses the command lines. If expect is empty the link is
// up when the status command exits 0; otherwise its output must also
// contain expect.
func NewCommandLink(connect, status, expect string, creds Credentials) (*CommandLink, error) {
	connectArgs, err := splitCommand("connect", connect)
	if err != nil {
		return nil, err
	}
	statusArgs, err := splitCommand("status", status)
	if err != nil {
		return nil, err
	}
	return &CommandLink{
		connect: connectArgs,
		status:  statusArgs,
		expect:  expect,
		creds:   creds,
	}, nil
}

func splitCommand(name, line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse %s command: %w", name, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("bootstrap: empty %s command", name)
	}
	return args, nil
}

func (l *CommandLink) command(ctx context.Context, tmpl []string) *exec.Cmd {
	args := make([]string, len(tmpl))
	for i, a := range tmpl {
		args[i] = l.creds.expand(a)
	}
	return exec.CommandContext(ctx, args[0], args[1:]...)
}

// Connect runs the connect command.
func (l *CommandLink) Connect(ctx context.Context) error {
	out, err := l.command(ctx, l.connect).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", l.connect[0], err, bytes.TrimSpace(out))
	}
	return nil
}

// Connected runs the status command. A non-zero exit means the link is
// down; failing to start the command is an error.
func (l *CommandLink) Connected(ctx context.Context) (bool, error) {
	out, err := l.command(ctx, l.status).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", l.status[0], err)
	}
	if l.expect == "" {
		return true, nil
	}
	return bytes.Contains(out, []byte(l.expect)), nil
}

// InterfaceLink waits for a network interface that is managed elsewhere,
// for example by wpa_supplicant or systemd-networkd, to come up with an
// address.
type InterfaceLink struct {
	Name string
}

// Connect does nothing; the interface is brought up by the system.
func (InterfaceLink) Connect(context.Context) error { return nil }

// Connected reports whether the interface is up and has a global unicast
// address.
func (l InterfaceLink) Connected(context.Context) (bool, error) {
	iface, err := net.InterfaceByName(l.Name)
	if err != nil {
		return false, fmt.Errorf("bootstrap: interface %s: %w", l.Name, err)
	}
	if iface.Flags&net.FlagUp == 0 {
		return false, nil
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return false, fmt.Errorf("bootstrap: interface %s addresses: %w", l.Name, err)
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.IsGlobalUnicast() {
			return true, nil
		}
	}
	return false, nil
}

// StaticLink is always up. It is used when the host network is managed
// entirely outside the light, for example in containers.
type StaticLink struct{}

func (StaticLink) Connect(context.Context) error           { return nil }
func (StaticLink) Connected(context.Context) (bool, error) { return true, nil }
