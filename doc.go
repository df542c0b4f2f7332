/*
Package mojogen generates Mojo bindings for libraries exposing a C ABI.

The library's types, traits and methods are described by a type universe
file. For every type and trait, mojogen writes a declaration file holding
its shape and an implementation file holding its functions.

# Architecture pipeline (for developers)

Each element in the pipeline has distinct sub-packages that do a specific part. These are then "glued" together in the [Generate] function.
 1. [config]: Parse the user-supplied 'mojogen.toml' file
 2. [hir/hirload]: Load the type universe into a [hir.TypeContext]
 3. [config/rules]: Rename and select definitions
 4. [lower]: Lower each definition into output units, naming everything through a [formatter.Formatter] and collecting soft diagnostics in a [diag.Store]
 5. [render]: Turn units into file contents
*/
package mojogen
