// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(distanceFilesGuide)
	app.Add(paramFilesGuide)
	app.Add(projectsGuide)
	app.Add(tableFilesGuide)
	app.Add(treeFilesGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
SSU requires several files to calculate the distances between samples. To
reduce the burden of keeping track of many files, a single project file is
used to hold the reference of all files required in the analysis. This guide
explains the structure of the file, but most of the time, the best and most
secure way to edit or view this file is by using ssu commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# ssu project files
	dataset	path
	param	param.tab
	table	table.tab.gz
	trees	trees.tab

The valid file types are:

- Analysis parameters. Defined by the dataset keyword "param". This file
  contains the UniFrac method and its options. The recommended way to edit
  the parameters is by using the command 'ssu param'.
- Feature tables. Defined by the dataset keyword "table". This file contains
  the abundance of each feature in each sample. The recommended way to add a
  feature table is by using the command 'ssu table add'.
- Phylogenetic trees. Defined by the dataset keyword "newick" for a single
  tree in newick format, or by the dataset keyword "trees" for one or more
  trees in the form of a tab-delimited file. A project can not have both.
  The recommended way to add a tree file is by using the command
  'ssu tree add'.

Unknown or repeated dataset keywords are rejected when reading a project.

Data files can be compressed with gzip.
	`,
}

var tableFilesGuide = &command.Command{
	Usage: "table-files",
	Short: "about feature table files",
	Long: `
A feature table stores the abundance of each feature (for example an OTU, or
an ASV) in each sample. SSU reads feature tables in the classic tab-delimited
format produced by the BIOM tools.

The first row is the header. Its first column is the feature ID column
(usually "#OTU ID"), and it is followed by one column for each sample. An
optional last column named "taxonomy" or "metadata" is ignored. Each following
row contains the ID of a feature, and its abundance in each sample. Any other
line starting with '#' is a comment.

Here is an example file:

	# Constructed from biom file
	#OTU ID	S1	S2	S3
	GG_OTU_1	0	5	1
	GG_OTU_2	2	0	1
	GG_OTU_3	1	1	0

Abundances must be non-negative numbers. The feature IDs are matched against
the terminal names of the tree. If a feature does not match any terminal
exactly, it is compared in a canonical form (case is ignored, and underscores
are taken as spaces), but only against terminals not already matched by
another feature. Features that are not in the tree are ignored (a warning will
be logged). Use 'ssu tree terms --missing' to list them.

In a SSU project, the file that contains the feature table is indicated with
the "table" keyword.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
In SSU, a phylogenetic tree is stored either as a single tree in newick
format, or as a collection of time-calibrated trees in a tab-delimited file.
A project uses only one of these formats. Trees are added to a project with
the command 'ssu tree add'.

A newick file is used as read: branch lengths are kept without rounding, a
missing branch length is taken as zero, and terminal names are kept as found
in the file. The name of the tree is the name of the file without extension
(e.g., "otus" for "otus.nwk"). Here is an example file:

	((GG_OTU_1:0.0000004,GG_OTU_2:0.0000013):0.0000021,GG_OTU_3:0.0000117);

In a tab-delimited tree file, the length of a branch is the difference between
the age of the parent and the age of the node, in million years. As ages are
stored in years, branches shorter than a year are rounded. Terminal names are
stored in a canonical form: the first letter in upper case, the rest in lower
case, and underscores replaced by spaces (e.g., "GG_OTU_1" is stored as
"Gg otu 1"). Table features are still matched against canonical names (see
'ssu help table-files'), but a newick tree should be preferred to keep the
original names.

A SSU tree file is a tab-delimited file with the following columns:

	-tree    for the name of the tree.
	-node    for the ID of the node.
	-parent  for of ID of the parent node (-1 is used for the root).
	-age     the age of the node (in years).
	-taxon   the name of the node, used to match the features of a table.

Here is an example file:

	# phylogenetic tree
	tree	node	parent	age	taxon
	otus	0	-1	3000000
	otus	1	0	0	Gg otu 1
	otus	2	0	1000000
	otus	3	2	0	Gg otu 2
	otus	4	2	0	Gg otu 3

In a SSU project, a newick tree file is indicated with the "newick" keyword,
and a tab-delimited tree file with the "trees" keyword.
	`,
}

var paramFilesGuide = &command.Command{
	Usage: "param-files",
	Short: "about parameter files",
	Long: `
The parameters of the distance calculation are stored in a tab-delimited file
with the following fields:

	- parameter  the name of the parameter
	- value      the value of the parameter

Here is an example file:

	# ssu parameters
	parameter	value
	method	generalized
	alpha	0.5
	variance	false
	drop-empty	false
	strict	false

Valid parameters are:

	- method      the UniFrac method. Valid values are "unweighted",
	              "weighted_unnormalized", "weighted_normalized", and
	              "generalized". Default is "unweighted".
	- alpha       the exponent of the generalized UniFrac. Default is 1.
	- variance    if true, it uses variance adjusted weights.
	- drop-empty  if true, samples without abundance in the tree are
	              ignored. Otherwise they are an error.
	- strict      if true, trees with zero length branches are rejected.

In a SSU project, the file that contains the parameters is indicated with the
"param" keyword.
	`,
}

var distanceFilesGuide = &command.Command{
	Usage: "distance-files",
	Short: "about distance matrix files",
	Long: `
The distances between samples are stored as a square tab-delimited matrix. The
first row contains the sample labels, preceded by an empty cell. Each
following row contains the label of a sample, and its distance to each other
sample. Lines starting with '#' are comments.

Here is an example file:

	# unifrac distances
	# method: unweighted
		S1	S2	S3
	S1	0	0.5	0.25
	S2	0.5	0	0.75
	S3	0.25	0.75	0

The matrix is symmetric, with zeros in the diagonal.
	`,
}
