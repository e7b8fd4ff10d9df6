package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/absfs/smbclient"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a server name to an IPv4 address",
		Long:  `Resolve a server name the way a session does: literal address, then DNS when a domain is known, then NetBIOS.`,
		Example: heredoc.Doc(`
			$ smbctl resolve fs1.corp.example
			$ smbctl resolve FILESRV --domain CORP
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &smbclient.Config{
				Server:        args[0],
				NetBIOSServer: a.v.GetString("netbios-server"),
				Logger:        a.logger,
			}
			res, err := smbclient.NewAddressResolver(cfg).Resolve(cmd.Context(), args[0], a.v.GetString("domain"))
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), []string{"Address", "Host", "Domain", "Method"},
				[][]string{{res.Address.String(), res.Host, res.Domain, res.Method.String()}})
		},
	}
	return cmd
}

func newSharesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shares",
		Short: "List the shares a server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer sess.Disconnect(ctx)

			names, err := sess.ListSharedFolders(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(names))
			for _, info := range smbclient.DescribeShares(names) {
				rows = append(rows, []string{info.Name, info.Type.String()})
			}
			return printTable(cmd.OutOrStdout(), []string{"Name", "Type"}, rows)
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var (
		recursive bool
		depth     int
		match     string
		dirMatch  string
		long      bool
	)

	cmd := &cobra.Command{
		Use:   "ls <share[/path]>",
		Short: "List a remote directory",
		Long: heredoc.Doc(`
			List a remote directory. With -r the listing descends into
			subdirectories; --depth bounds how far. --match filters the
			reported file names and --dir-match selects which directory
			paths are reported and descended.
		`),
		Example: heredoc.Doc(`
			$ smbctl ls data/projects
			$ smbctl ls -r --match '(?i)\.pdf$' data/reports
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, p, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			fileFilter, err := compileFilter(match)
			if err != nil {
				return err
			}
			dirFilter, err := compileFilter(dirMatch)
			if err != nil {
				return err
			}

			maxDepth := 1
			if recursive {
				maxDepth = smbclient.DepthUnlimited
				if cmd.Flags().Changed("depth") {
					maxDepth = depth
				}
			}

			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				entries, err := sh.ListFilesRecursively(cmd.Context(), p, fileFilter, dirFilter, maxDepth)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !long {
					for _, e := range entries {
						fmt.Fprintln(out, e.String())
					}
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.Mode().String(),
						fmt.Sprint(e.Size()),
						e.WriteTime().Local().Format("2006-01-02 15:04"),
						e.Attributes().String(),
						e.String(),
					})
				}
				return printTable(out, []string{"Mode", "Size", "Modified", "Attributes", "Path"}, rows)
			})
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().IntVar(&depth, "depth", -1, "Maximum depth with -r (negative for unlimited)")
	cmd.Flags().StringVar(&match, "match", "", "Regular expression file names must match")
	cmd.Flags().StringVar(&dirMatch, "dir-match", "", "Regular expression directory paths must match")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show size, time and attributes")
	return cmd
}

func compileFilter(expr string) (smbclient.PathPredicate, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return smbclient.AsPredicate(re)
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <share/path>",
		Short: "Print a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, p, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				_, err := sh.ReadFileTo(cmd.Context(), p, cmd.OutOrStdout())
				return err
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <share/path> <local>",
		Short: "Download a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, p, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			local, err := homedir.Expand(args[1])
			if err != nil {
				return err
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				n, err := sh.CopyRemoteFileToLocal(cmd.Context(), p, local)
				if err != nil {
					return err
				}
				a.logger.Info("Downloaded", "remote", args[0], "local", local, "bytes", n)
				return nil
			})
		},
	}
}

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local> <share/path>",
		Short: "Upload a local file, replacing the remote one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := homedir.Expand(args[0])
			if err != nil {
				return err
			}
			share, p, err := a.splitRemote(args[1])
			if err != nil {
				return err
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				n, err := sh.CopyLocalFileToRemote(cmd.Context(), local, p)
				if err != nil {
					return err
				}
				a.logger.Info("Uploaded", "local", local, "remote", args[1], "bytes", n)
				return nil
			})
		},
	}
}

func newCpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <share/src> <share/dst>",
		Short: "Copy a file within one share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcShare, src, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			dstShare, dst, err := a.splitRemote(args[1])
			if err != nil {
				return err
			}
			if !strings.EqualFold(srcShare, dstShare) {
				return fmt.Errorf("cp copies within one share, got %q and %q", srcShare, dstShare)
			}
			return a.withShare(cmd.Context(), srcShare, func(sh *smbclient.Share) error {
				n, err := sh.CopyRemoteFileToRemote(cmd.Context(), src, dst)
				if err != nil {
					return err
				}
				a.logger.Info("Copied", "from", args[0], "to", args[1], "bytes", n)
				return nil
			})
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <share/path>",
		Short: "Create a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, p, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				return sh.CreateDirectory(cmd.Context(), p)
			})
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <share/path>...",
		Short: "Remove remote files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, _, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				s, p, err := a.splitRemote(arg)
				if err != nil {
					return err
				}
				if !strings.EqualFold(s, share) {
					return fmt.Errorf("rm works within one share, got %q and %q", share, s)
				}
				paths = append(paths, p)
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				for _, p := range paths {
					if err := sh.RemoveFile(cmd.Context(), p); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRmdirCmd(a *app) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rmdir <share/path>",
		Short: "Remove a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			share, p, err := a.splitRemote(args[0])
			if err != nil {
				return err
			}
			return a.withShare(cmd.Context(), share, func(sh *smbclient.Share) error {
				if recursive {
					return sh.RemoveDirectory(cmd.Context(), p)
				}
				return sh.RemoveEmptyDirectory(cmd.Context(), p)
			})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Remove the directory and everything below it")
	return cmd
}

func newNTHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nthash [password]",
		Short: "Print the NT hash of a password",
		Long:  `Print the NT hash of a password. Without an argument the password is read from the first line of standard input.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(smbclient.NTHash(password)))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTable(cmd.OutOrStdout(), nil, [][]string{
				{"Version", Version},
				{"Git commit", GitCommit},
				{"Build date", BuildDate},
			})
		},
	}
}
