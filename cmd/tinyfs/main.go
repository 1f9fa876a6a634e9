// Command tinyfs is a demo driver for the tinyfs package: the argument
// parsing and human-readable output collaborator spec.md §1 calls out
// of scope for the core, implemented here as a concrete CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tinylabs/tinyfs/tinyfs"
	"github.com/tinylabs/tinyfs/util"
)

var log = logrus.WithField("component", "cmd/tinyfs")

var diskPath string

func main() {
	root := &cobra.Command{
		Use:   "tinyfs",
		Short: "TinyFS — a single-volume, block-structured file system over an emulated disk",
	}
	root.PersistentFlags().StringVarP(&diskPath, "disk", "d", tinyfs.DefaultDiskName, "path to the emulated disk image")

	root.AddCommand(
		mkfsCmd(),
		catCmd(),
		putCmd(),
		rmCmd(),
		lsCmd(),
		fragCmd(),
		defragCmd(),
	)

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func mkfsCmd() *cobra.Command {
	var size int64
	cmd := &cobra.Command{
		Use:   "mkfs",
		Short: "create a new TinyFS volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tinyfs.Mkfs(diskPath, size); err != nil {
				return err
			}
			fmt.Printf("created %s (%d bytes)\n", diskPath, size)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&size, "size", "s", tinyfs.DefaultDiskSize, "disk size in bytes")
	return cmd
}

func withVolume(fn func(v *tinyfs.Volume) error) error {
	v, err := tinyfs.Mount(diskPath)
	if err != nil {
		return err
	}
	defer v.Unmount()
	return fn(v)
}

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <file>",
		Short: "write the contents of a host file into a TinyFS file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			return withVolume(func(v *tinyfs.Volume) error {
				fd, err := v.OpenFile(args[0])
				if err != nil {
					return err
				}
				defer v.CloseFile(fd)
				return v.WriteFile(fd, data)
			})
		},
	}
}

func catCmd() *cobra.Command {
	var hex bool
	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "print a TinyFS file's contents, byte by byte, to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *tinyfs.Volume) error {
				fd, err := v.OpenFile(args[0])
				if err != nil {
					return err
				}
				defer v.CloseFile(fd)
				// fp is stored in the inode; start from the first byte.
				_ = v.Seek(fd, 0)
				var data []byte
				for {
					b, err := v.ReadByte(fd)
					if err != nil {
						break
					}
					data = append(data, b)
				}
				if hex {
					fmt.Print(util.DumpByteSlice(data, 16, true, true, false, nil))
					return nil
				}
				os.Stdout.Write(data)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&hex, "hex", false, "dump the file's contents as a hex/ASCII table instead of raw bytes")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "delete a TinyFS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *tinyfs.Volume) error {
				fd, err := v.OpenFile(args[0])
				if err != nil {
					return err
				}
				return v.DeleteFile(fd)
			})
		},
	}
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "list files currently open on the volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *tinyfs.Volume) error {
				names, err := v.Readdir()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			})
		},
	}
}

func fragCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fragments",
		Short: "display the disk map's block-by-block occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *tinyfs.Volume) error {
				s, err := v.DisplayFragments()
				if err != nil {
					return err
				}
				fmt.Println(s)
				return nil
			})
		},
	}
}

func defragCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defrag",
		Short: "compact the volume, coalescing free space into a tail run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVolume(func(v *tinyfs.Volume) error {
				return v.Defrag()
			})
		},
	}
}
