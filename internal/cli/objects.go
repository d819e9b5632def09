package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/aimrepo/internal/repo"
	"github.com/mesh-intelligence/aimrepo/pkg/types"
)

func parseCategoryFlag(s string) (types.Category, error) {
	cat, err := types.ParseCategoryPath(s)
	if err != nil {
		return 0, usageError{err}
	}
	return cat, nil
}

func newTrackCmd() *cobra.Command {
	var category, mode, data string
	cmd := &cobra.Command{
		Use:   "track <name> <value>",
		Short: "Record a value in a series on the active branch",
		Long: "Append (or with --mode w, replace) a value in the JSON array stored under\n" +
			"<name>. The value is parsed as JSON when possible and stored as a string\n" +
			"otherwise.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			wm, err := repo.ParseWriteMode(mode)
			if err != nil {
				return usageError{err}
			}
			payload, err := parseJSONArg("data", data)
			if err != nil {
				return err
			}
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				p, err := r.StoreFile(args[0], cat, parseValueArg(args[1]), wm, payload)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd, p)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", types.MetricsDir, "category tag path: metrics, media/images, misclassification, models, correlation")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(repo.ModeAppend), "write mode: a (append) or w (overwrite)")
	cmd.Flags().StringVar(&data, "data", "", "JSON payload recorded in the meta index")
	return cmd
}

func newImageCmd() *cobra.Command {
	var index bool
	cmd := &cobra.Command{
		Use:   "image <name> <file>",
		Short: "Copy an image into media/images on the active branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				p, err := r.StoreImage(args[0], types.CategoryImages, index)
				if err != nil {
					return err
				}
				if err := copyInto(r.Fs(), p.AbsPath, args[1]); err != nil {
					return err
				}
				log.Debug("image copied", zap.String("source", args[1]), zap.String("path", p.Path))
				if flags.jsonMode {
					return writeJSON(cmd, p)
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&index, "index", true, "record the image in the meta index")
	return cmd
}

type checkpointView struct {
	repo.ModelPaths
	Archived bool `json:"archived"`
}

func newCheckpointCmd() *cobra.Command {
	var (
		category, meta, model, weights string
		epoch                          int
		archive                        bool
	)
	cmd := &cobra.Command{
		Use:   "checkpoint <checkpoint> <name>",
		Short: "Record a model checkpoint on the active branch",
		Long: "Create models/<checkpoint>/ with its model.json descriptor and meta entry.\n" +
			"--weights copies a file in as the model weights; --archive then packs the\n" +
			"checkpoint directory into <checkpoint>.aim.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("epoch") {
				return usagef("--epoch is required")
			}
			cat, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			metaInfo, err := parseJSONArg("meta", meta)
			if err != nil {
				return err
			}
			modelInfo, err := parseJSONArg("model", model)
			if err != nil {
				return err
			}
			return withRepo(cmd, func(r *repo.Repo, log *zap.Logger) error {
				mp, err := r.StoreModel(args[0], args[1], epoch, metaInfo, modelInfo, cat)
				if err != nil {
					return err
				}
				if weights != "" {
					if err := copyInto(r.Fs(), mp.ModelPath, weights); err != nil {
						return err
					}
				}
				view := checkpointView{ModelPaths: mp}
				if archive {
					if _, err := r.ArchiveCheckpoint(args[0], cat); err != nil {
						return err
					}
					view.Archived = true
				}
				if flags.jsonMode {
					return writeJSON(cmd, view)
				}
				if view.Archived {
					fmt.Fprintln(cmd.OutOrStdout(), mp.ArchivePath)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), mp.DirPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", types.ModelsDir, "category tag path")
	cmd.Flags().IntVar(&epoch, "epoch", 0, "training epoch of the checkpoint")
	cmd.Flags().StringVar(&meta, "meta", "", "JSON training metadata")
	cmd.Flags().StringVar(&model, "model", "", "JSON model description")
	cmd.Flags().StringVar(&weights, "weights", "", "file to copy in as the model weights")
	cmd.Flags().BoolVar(&archive, "archive", false, "pack the checkpoint directory into an archive")
	return cmd
}
