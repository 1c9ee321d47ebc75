package specfem

// parFileTemplate holds {NAME} placeholders for every parameter.
const parFileTemplate = `# simulation input parameters
#
# forward or adjoint simulation
# 1 = forward, 2 = adjoint, 3 = both simultaneously
SIMULATION_TYPE                 = {SIMULATION_TYPE}
# 0 = earthquake simulation,  1/2/3 = three steps in noise simulation
NOISE_TOMOGRAPHY                = {NOISE_TOMOGRAPHY}
SAVE_FORWARD                    = {SAVE_FORWARD}

# UTM projection parameters
UTM_PROJECTION_ZONE             = {UTM_PROJECTION_ZONE}
SUPPRESS_UTM_PROJECTION         = {SUPPRESS_UTM_PROJECTION}

# number of MPI processors

NPROC                           = {NPROC}

# time step parameters
NSTEP                           = {NSTEP}
DT                              = {DT}

# number of nodes for 2D and 3D shape functions for hexahedra
# we use either 8-node mesh elements (bricks) or 27-node elements.
# If you use our internal mesher, the only option is 8-node bricks (27-node elements are not supported)
# CUBIT does not support HEX27 elements either (it can generate them, but they are flat, i.e. identical to HEX8).
# To generate HEX27 elements with curvature properly taken into account, you can use Gmsh http://geuz.org/gmsh/
NGNOD                       = {NGNOD}

# models:
# available options are:
#   default (model parameters described by mesh properties)
# 1D models available are:
#   1d_prem,1d_socal,1d_cascadia
# 3D models available are:
#   aniso,external,gll,salton_trough,tomo
MODEL                           = {MODEL}

# parameters describing the model
APPROXIMATE_OCEAN_LOAD          = {APPROXIMATE_OCEAN_LOAD}
TOPOGRAPHY                      = {TOPOGRAPHY}
ATTENUATION                     = {ATTENUATION}
FULL_ATTENUATION_SOLID          = {FULL_ATTENUATION_SOLID}
ANISOTROPY                      = {ANISOTROPY}
GRAVITY                         = {GRAVITY}

# path for external tomographic models files
TOMOGRAPHY_PATH                 = {TOMOGRAPHY_PATH}

# Olsen's constant for Q_mu = constant * v_s attenuation rule
USE_OLSEN_ATTENUATION           = {USE_OLSEN_ATTENUATION}
OLSEN_ATTENUATION_RATIO         = {OLSEN_ATTENUATION_RATIO}

# C-PML boundary conditions for a regional simulation
PML_CONDITIONS                  = {PML_CONDITIONS}

# C-PML top surface
PML_INSTEAD_OF_FREE_SURFACE     = {PML_INSTEAD_OF_FREE_SURFACE}

# C-PML dominant frequency
f0_FOR_PML                      = {f0_FOR_PML}

# parameters used to rotate C-PML boundary conditions by a given angle (not implemented yet)
# ROTATE_PML_ACTIVATE           = {ROTATE_PML_ACTIVATE}
# ROTATE_PML_ANGLE              = {ROTATE_PML_ANGLE}

# Stacey absorbing boundary conditions for a regional simulation (obsolete, using CPML above is much better)
STACEY_ABSORBING_CONDITIONS     = {STACEY_ABSORBING_CONDITIONS}

# Stacey absorbing top surface (defined in mesh as 'free_surface_file') (obsolete, using CPML above is much better)
STACEY_INSTEAD_OF_FREE_SURFACE  = {STACEY_INSTEAD_OF_FREE_SURFACE}

# save AVS or OpenDX movies
# MOVIE_TYPE = 1 to show the top surface
# MOVIE_TYPE = 2 to show all the external faces of the mesh
CREATE_SHAKEMAP                 = {CREATE_SHAKEMAP}
MOVIE_SURFACE                   = {MOVIE_SURFACE}
MOVIE_TYPE                      = {MOVIE_TYPE}
MOVIE_VOLUME                    = {MOVIE_VOLUME}
SAVE_DISPLACEMENT               = {SAVE_DISPLACEMENT}
USE_HIGHRES_FOR_MOVIES          = {USE_HIGHRES_FOR_MOVIES}
NTSTEP_BETWEEN_FRAMES           = {NTSTEP_BETWEEN_FRAMES}
HDUR_MOVIE                      = {HDUR_MOVIE}

# save AVS or OpenDX mesh files to check the mesh
SAVE_MESH_FILES                 = {SAVE_MESH_FILES}

# path to store the local database file on each node
LOCAL_PATH                      = {LOCAL_PATH}
# interval at which we output time step info and max of norm of displacement
NTSTEP_BETWEEN_OUTPUT_INFO      = {NTSTEP_BETWEEN_OUTPUT_INFO}

# interval in time steps for writing of seismograms
NTSTEP_BETWEEN_OUTPUT_SEISMOS   = {NTSTEP_BETWEEN_OUTPUT_SEISMOS}

# interval in time steps for reading adjoint traces
# 0 = read the whole adjoint sources at the same time
NTSTEP_BETWEEN_READ_ADJSRC      = {NTSTEP_BETWEEN_READ_ADJSRC}

# use a (tilted) FORCESOLUTION force point source (or several) instead of a CMTSOLUTION moment-tensor source.
# This can be useful e.g. for oil industry foothills simulations or asteroid simulations
# in which the source is a vertical force, normal force, inclined force, impact etc.
# If this flag is turned on, the FORCESOLUTION file must be edited by precising:
# - the corresponding time-shift parameter,
# - the half duration parameter of the source,
# - the coordinates of the source,
# - the magnitude of the force source,
# - the components of a (non-unitary) direction vector for the force source in the E/N/Z_UP basis.
# The direction vector is made unitary internally in the code and thus only its direction matters here;
# its norm is ignored and the norm of the force used is the factor force source times the source time function.
USE_FORCE_POINT_SOURCE          = {USE_FORCE_POINT_SOURCE}

# set to true to use a Ricker source time function instead of the source time functions set by default
# to represent a (tilted) FORCESOLUTION force point source or a CMTSOLUTION moment-tensor source.
USE_RICKER_TIME_FUNCTION        = {USE_RICKER_TIME_FUNCTION}

# print source time function
PRINT_SOURCE_TIME_FUNCTION      = {PRINT_SOURCE_TIME_FUNCTION}

# set to true to use GPUs
GPU_MODE                        = {GPU_MODE}`
