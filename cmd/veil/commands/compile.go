// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/veil-project/veil/anonymity"
	"github.com/veil-project/veil/bundle"
	"github.com/veil-project/veil/cmd/veil/cli"
	"github.com/veil-project/veil/firewall"
	"github.com/veil-project/veil/launch"
	"github.com/veil-project/veil/lib/profile"
	"github.com/veil-project/veil/proxychain"
	"github.com/veil-project/veil/tunnel"
)

// compileFlags are shared by every compile subcommand. Unset values
// fall back to the configuration file.
type compileFlags struct {
	iface       string
	socksPort   uint16
	chainPrefix string
	outputJSON  bool
}

func (f *compileFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.iface, "interface", "", "tap device the firewall rules bind to (default from config)")
	flagSet.Uint16Var(&f.socksPort, "socks-port", 0, "override the Tor SOCKS port (default from config or profile)")
	flagSet.StringVar(&f.chainPrefix, "chain-prefix", "", "iptables chain prefix (default from config)")
	flagSet.BoolVar(&f.outputJSON, "json", false, "output as JSON")
}

// options merges the flags over the configuration and validates the
// result, so flag values face the same checks as file values.
func (f *compileFlags) options(env *Environment) (bundle.Options, error) {
	loaded, err := env.loadConfig()
	if err != nil {
		return bundle.Options{}, err
	}
	merged := *loaded
	if f.iface != "" {
		merged.Compiler.Interface = f.iface
	}
	if f.socksPort != 0 {
		merged.Compiler.SocksPort = f.socksPort
	}
	if f.chainPrefix != "" {
		merged.Compiler.ChainPrefix = f.chainPrefix
	}
	if err := merged.Validate(); err != nil {
		return bundle.Options{}, err
	}
	return bundle.Options{
		Interface:   merged.Compiler.Interface,
		SocksPort:   merged.Compiler.SocksPort,
		ChainPrefix: merged.Compiler.ChainPrefix,
	}, nil
}

func compileCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "compile",
		Summary: "Compile a profile into host and guest configuration",
		Description: `Compile a stored profile or preset into the configuration that
enforces it. Output goes to stdout; nothing is applied to the host.`,
		Subcommands: []*cli.Command{
			compileLaunchCommand(env),
			compileFirewallCommand(env),
			compileTorCommand(env),
			compileTunnelCommand(env),
			compileProxyChainsCommand(env),
			compileBundleCommand(env),
		},
	}
}

// compileRunner resolves and validates the named profile, then hands
// it to compile.
func compileRunner(env *Environment, flags *compileFlags, compile func(*profile.SecurityProfile, bundle.Options) error) func([]string) error {
	return func(args []string) error {
		if err := cli.RequireArgs(args, 1, "<profile>"); err != nil {
			return err
		}
		source, err := env.openSource()
		if err != nil {
			return err
		}
		p, err := env.resolve(source, args[0])
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		options, err := flags.options(env)
		if err != nil {
			return err
		}
		return compile(p, options)
	}
}

func flagsFor(name string, flags *compileFlags, extra func(*pflag.FlagSet)) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		flags.register(flagSet)
		if extra != nil {
			extra(flagSet)
		}
		return flagSet
	}
}

func compileLaunchCommand(env *Environment) *cli.Command {
	var flags compileFlags
	return &cli.Command{
		Name:    "launch",
		Summary: "QEMU network and device arguments",
		Usage:   "veil compile launch <profile> [flags]",
		Flags:   flagsFor("launch", &flags, nil),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, options bundle.Options) error {
			tokens := launch.Compile(p, launch.Options{SocksPort: options.SocksPort})
			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if flags.outputJSON {
				return renderer.JSON(tokens)
			}
			return renderer.Highlight(strings.Join(tokens, " ")+"\n", cli.SyntaxShell)
		}),
	}
}

func compileFirewallCommand(env *Environment) *cli.Command {
	var flags compileFlags
	var teardown, argv bool
	return &cli.Command{
		Name:    "firewall",
		Summary: "iptables commands",
		Usage:   "veil compile firewall <profile> [flags]",
		Examples: []cli.Example{
			{Description: "Rules for a VM on tap1", Command: "veil compile firewall paranoid --interface tap1"},
			{Description: "Remove the chain again", Command: "veil compile firewall paranoid --teardown"},
			{Description: "Argument lists for an applier that runs without a shell", Command: "veil compile firewall paranoid --argv"},
		},
		Flags: flagsFor("firewall", &flags, func(flagSet *pflag.FlagSet) {
			flagSet.BoolVar(&teardown, "teardown", false, "emit the commands that remove the profile's chain")
			flagSet.BoolVar(&argv, "argv", false, "output each command as a JSON argv list instead of shell text")
		}),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, options bundle.Options) error {
			firewallOptions := firewall.Options{ChainPrefix: options.ChainPrefix}
			var commands []string
			if teardown {
				commands = firewall.Teardown(p, firewallOptions)
			} else {
				commands = firewall.Compile(p, options.Interface, firewallOptions)
				if p.RoutesThroughTor() {
					commands = append(commands, firewall.TransparentProxy(torConfig(p, options))...)
				}
			}
			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if argv {
				argvs, err := firewall.SplitAll(commands)
				if err != nil {
					return err
				}
				return renderer.JSON(argvs)
			}
			if flags.outputJSON {
				return renderer.JSON(commands)
			}
			return renderer.Highlight(strings.Join(commands, "\n")+"\n", cli.SyntaxShell)
		}),
	}
}

func compileTorCommand(env *Environment) *cli.Command {
	var flags compileFlags
	return &cli.Command{
		Name:    "tor",
		Summary: "torrc for the Tor daemon serving the VM",
		Usage:   "veil compile tor <profile> [flags]",
		Flags:   flagsFor("tor", &flags, nil),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, options bundle.Options) error {
			if !p.RoutesThroughTor() {
				return fmt.Errorf("profile %q does not route through Tor", p.Name)
			}
			torrc := anonymity.Compile(p.Name, torConfig(p, options))
			return emitText(env, flags.outputJSON, torrc, cli.SyntaxINI)
		}),
	}
}

func compileTunnelCommand(env *Environment) *cli.Command {
	var flags compileFlags
	return &cli.Command{
		Name:    "tunnel",
		Summary: "WireGuard or OpenVPN configuration",
		Usage:   "veil compile tunnel <profile> [flags]",
		Flags:   flagsFor("tunnel", &flags, nil),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, _ bundle.Options) error {
			if p.VpnConfig == nil {
				return fmt.Errorf("profile %q has no VPN configuration", p.Name)
			}
			return emitText(env, flags.outputJSON, tunnel.Compile(p.VpnConfig), cli.SyntaxINI)
		}),
	}
}

func compileProxyChainsCommand(env *Environment) *cli.Command {
	var flags compileFlags
	var disableProxyDNS bool
	return &cli.Command{
		Name:    "proxychains",
		Summary: "proxychains configuration",
		Usage:   "veil compile proxychains <profile> [flags]",
		Flags: flagsFor("proxychains", &flags, func(flagSet *pflag.FlagSet) {
			flagSet.BoolVar(&disableProxyDNS, "no-proxy-dns", false, "resolve names locally instead of through the chain")
		}),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, _ bundle.Options) error {
			if p.ProxyConfig == nil {
				return fmt.Errorf("profile %q has no proxy configuration", p.Name)
			}
			text := proxychain.Compile(p.ProxyConfig, proxychain.Options{DisableProxyDNS: disableProxyDNS})
			return emitText(env, flags.outputJSON, text, cli.SyntaxINI)
		}),
	}
}

func compileBundleCommand(env *Environment) *cli.Command {
	var flags compileFlags
	return &cli.Command{
		Name:    "bundle",
		Summary: "Every applicable artifact plus digests",
		Usage:   "veil compile bundle <profile> [flags]",
		Flags:   flagsFor("bundle", &flags, nil),
		Run: compileRunner(env, &flags, func(p *profile.SecurityProfile, options bundle.Options) error {
			compiled, err := bundle.Compile(p, options)
			if err != nil {
				return err
			}
			if env.Logger != nil {
				env.Logger.Debug("compiled bundle",
					"profile", compiled.Profile,
					"artifacts", len(compiled.Names()),
					"digest", compiled.Digest.Short(),
				)
			}

			renderer, err := env.renderer()
			if err != nil {
				return err
			}
			if flags.outputJSON {
				return renderer.JSON(compiled)
			}
			renderer.Heading(compiled.Profile)
			renderer.Field("interface", compiled.Interface)
			renderer.Field("compiler", compiled.CompilerVersion)
			renderer.Field("profile digest", compiled.ProfileDigest.String())
			renderer.Field("bundle digest", compiled.Digest.String())
			contents := compiled.Contents()
			for _, name := range compiled.Names() {
				renderer.Line("")
				renderer.Heading(name)
				syntax := cli.SyntaxINI
				if name == bundle.ArtifactLaunch || name == bundle.ArtifactFirewall || name == bundle.ArtifactTransparentProxy {
					syntax = cli.SyntaxShell
				}
				if err := renderer.Highlight(strings.TrimSuffix(contents[name], "\n")+"\n", syntax); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

// torConfig is p's effective Tor policy with the SOCKS override applied.
func torConfig(p *profile.SecurityProfile, options bundle.Options) profile.AnonymityConfig {
	tor := p.EffectiveAnonymity()
	if options.SocksPort != 0 {
		tor.SocksPort = options.SocksPort
	}
	return tor
}

// emitText writes a single configuration file, or wraps it in a JSON
// string.
func emitText(env *Environment, outputJSON bool, text, syntax string) error {
	renderer, err := env.renderer()
	if err != nil {
		return err
	}
	if outputJSON {
		return renderer.JSON(text)
	}
	return renderer.Highlight(text, syntax)
}
