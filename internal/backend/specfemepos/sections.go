package specfemepos

type section struct {
	title string
	names []string
}

// parFileSections fixes the Par_file layout. Every schema parameter appears
// exactly once.
var parFileSections = []section{
	{"simulation input parameters", []string{
		"SIMULATION_TYPE",
		"NOISE_TOMOGRAPHY",
		"SAVE_FORWARD",
	}},
	{"UTM projection parameters", []string{
		"UTM_PROJECTION_ZONE",
		"SUPPRESS_UTM_PROJECTION",
	}},
	{"number of MPI processors", []string{
		"NPROC",
	}},
	{"time step parameters", []string{
		"NSTEP",
		"DT",
	}},
	{"LDDRK time scheme", []string{
		"USE_LDDRK",
		"INCREASE_CFL_FOR_LDDRK",
		"RATIO_BY_WHICH_TO_INCREASE_IT",
	}},
	{"mesh", []string{
		"NGNOD",
		"MODEL",
		"TOMOGRAPHY_PATH",
		"SEP_MODEL_DIRECTORY",
		"APPROXIMATE_OCEAN_LOAD",
		"TOPOGRAPHY",
		"ATTENUATION",
		"ANISOTROPY",
		"GRAVITY",
		"ATTENUATION_f0_REFERENCE",
		"MIN_ATTENUATION_PERIOD",
		"MAX_ATTENUATION_PERIOD",
		"COMPUTE_FREQ_BAND_AUTOMATIC",
		"USE_OLSEN_ATTENUATION",
		"OLSEN_ATTENUATION_RATIO",
	}},
	{"absorbing boundary conditions", []string{
		"PML_CONDITIONS",
		"PML_INSTEAD_OF_FREE_SURFACE",
		"f0_FOR_PML",
		"STACEY_ABSORBING_CONDITIONS",
		"STACEY_INSTEAD_OF_FREE_SURFACE",
		"BOTTOM_FREE_SURFACE",
	}},
	{"visualization", []string{
		"CREATE_SHAKEMAP",
		"MOVIE_SURFACE",
		"MOVIE_TYPE",
		"MOVIE_VOLUME",
		"SAVE_DISPLACEMENT",
		"USE_HIGHRES_FOR_MOVIES",
		"NTSTEP_BETWEEN_FRAMES",
		"HDUR_MOVIE",
		"SAVE_MESH_FILES",
		"LOCAL_PATH",
		"NTSTEP_BETWEEN_OUTPUT_INFO",
	}},
	{"sources", []string{
		"USE_FORCE_POINT_SOURCE",
		"USE_RICKER_TIME_FUNCTION",
		"USE_EXTERNAL_SOURCE_FILE",
		"PRINT_SOURCE_TIME_FUNCTION",
		"USE_SOURCE_ENCODING",
	}},
	{"seismograms", []string{
		"NTSTEP_BETWEEN_OUTPUT_SEISMOS",
		"SAVE_SEISMOGRAMS_DISPLACEMENT",
		"SAVE_SEISMOGRAMS_VELOCITY",
		"SAVE_SEISMOGRAMS_ACCELERATION",
		"SAVE_SEISMOGRAMS_PRESSURE",
		"USE_BINARY_FOR_SEISMOGRAMS",
		"SU_FORMAT",
		"WRITE_SEISMOGRAMS_BY_MASTER",
		"SAVE_ALL_SEISMOS_IN_ONE_FILE",
		"USE_TRICK_FOR_BETTER_PRESSURE",
	}},
	{"energy calculation", []string{
		"OUTPUT_ENERGY",
		"NTSTEP_BETWEEN_OUTPUT_ENERGY",
	}},
	{"adjoint kernel outputs", []string{
		"NTSTEP_BETWEEN_READ_ADJSRC",
		"ANISOTROPIC_KL",
		"SAVE_TRANSVERSE_KL",
		"APPROXIMATE_HESS_KL",
		"SAVE_MOHO_MESH",
	}},
	{"simultaneous runs", []string{
		"NUMBER_OF_SIMULTANEOUS_RUNS",
		"BROADCAST_SAME_MESH_AND_MODEL",
	}},
	{"GPU", []string{
		"GPU_MODE",
	}},
	{"ADIOS options for I/O", []string{
		"ADIOS_ENABLED",
		"ADIOS_FOR_DATABASES",
		"ADIOS_FOR_MESH",
		"ADIOS_FOR_FORWARD_ARRAYS",
		"ADIOS_FOR_KERNELS",
	}},
}
